package scrape

import (
	"errors"
	"log/slog"
	"strings"
)

// ErrUnsupportedSource indicates that no registered strategy matches a URL.
var ErrUnsupportedSource = errors.New("no strategy registered for url")

type registration struct {
	domain   string
	strategy Strategy
}

// Registry maps domain substrings to extraction strategies. Resolution walks
// entries in registration order and the first substring match wins; ordering
// is the only tie-break between overlapping domains.
type Registry struct {
	entries []registration
	logger  *slog.Logger
}

// NewRegistry builds an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register appends a strategy for URLs containing the given domain substring.
func (r *Registry) Register(domainSubstring string, strategy Strategy) {
	r.entries = append(r.entries, registration{domain: domainSubstring, strategy: strategy})
}

// Resolve returns the first strategy whose domain substring occurs in the URL.
func (r *Registry) Resolve(pageURL string) (Strategy, error) {
	for _, entry := range r.entries {
		if strings.Contains(pageURL, entry.domain) {
			return entry.strategy, nil
		}
	}

	if r.logger != nil {
		r.logger.Warn("unsupported source", "url", pageURL)
	}
	return nil, ErrUnsupportedSource
}

package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"echosignal/internal/config"
	"echosignal/internal/metrics"
)

// FetchError reports a failed page retrieval: a network problem, a timeout,
// or a non-2xx response (StatusCode is zero for transport failures).
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPFetcher issues a single GET per URL with a browser user-agent and a
// bounded timeout. A token-bucket limiter spaces out requests; there is no
// retry and no caching.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	logger    *slog.Logger
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher wires an HTTP client from fetch configuration.
func NewHTTPFetcher(cfg config.HTTPConfig, logger *slog.Logger) *HTTPFetcher {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &HTTPFetcher{
		client:    &http.Client{Timeout: cfg.Timeout()},
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		logger:    logger,
	}
}

// Fetch retrieves the URL and parses the body into a goquery document.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("request").Inc()
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("network").Inc()
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.FetchErrors.WithLabelValues("status").Inc()
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("parse").Inc()
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("parse document: %w", err)}
	}

	f.debug("fetched document", "url", pageURL, "status", resp.StatusCode)
	return doc, nil
}

func (f *HTTPFetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

package scrape

import (
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"echosignal/internal/domain"
)

type stubStrategy struct {
	source string
}

func (s *stubStrategy) Source() string {
	return s.source
}

func (s *stubStrategy) Extract(_ *goquery.Document, pageURL string) domain.Draft {
	return domain.Draft{SourceName: s.source, CanonicalURL: pageURL}
}

func TestRegistryFirstMatchWins(t *testing.T) {
	t.Parallel()

	stratA := &stubStrategy{source: "A"}
	stratB := &stubStrategy{source: "B"}

	registry := NewRegistry(nil)
	registry.Register("a.com", stratA)
	registry.Register("a.com.evil.com", stratB)

	resolved, err := registry.Resolve("http://a.com.evil.com/x")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	// Registration order is the tie-break, not specificity.
	if resolved.Source() != stratA.Source() {
		t.Fatalf("expected first-registered strategy, got %s", resolved.Source())
	}
}

func TestRegistryUnsupported(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)
	registry.Register("cnbc.com", &stubStrategy{source: "CNBC"})

	_, err := registry.Resolve("http://example.org/post")
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource, got %v", err)
	}
}

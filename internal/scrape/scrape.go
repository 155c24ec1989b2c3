package scrape

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"echosignal/internal/domain"
)

// Strategy extracts a structured draft from a parsed page of one known source.
// Implementations never fail as a whole: every field resolves to its
// documented fallback when the markup does not cooperate.
type Strategy interface {
	// Source identifies the originating publisher.
	Source() string

	// Extract derives the article fields from the document. The URL becomes
	// the draft's canonical URL.
	Extract(doc *goquery.Document, pageURL string) domain.Draft
}

// Fetcher retrieves a URL and parses the response into a document tree.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*goquery.Document, error)
}

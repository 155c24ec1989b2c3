package domain

import (
	"strings"
	"time"
	"unicode"
)

// Status enumerates the publication workflow states of an article.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusPublished Status = "PUBLISHED"
	StatusRejected  Status = "REJECTED"
)

// SlugMaxLength bounds generated slugs to the column width of the slug fields.
const SlugMaxLength = 110

// Category classifies articles; identity is the slug.
type Category struct {
	ID   int64
	Name string
	Slug string
}

// Tag is a keyword label for articles; identity is the slug.
type Tag struct {
	ID   int64
	Name string
	Slug string
}

// Draft is the pre-persistence field set produced by a scrape strategy.
type Draft struct {
	Title           string
	Summary         string
	SourceName      string
	CanonicalURL    string
	PublicationDate time.Time
	Authors         string
	BodyText        string
	Categories      []string
	Tags            []string
}

// Article is a persisted research article with its taxonomy attached.
type Article struct {
	ID              int64
	Title           string
	Summary         string
	SourceName      string
	CanonicalURL    string
	PublicationDate time.Time
	Authors         string
	BodyText        string
	Status          Status
	Categories      []Category
	Tags            []Tag
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PublishedAt     *time.Time
}

// Slugify normalizes a name into a URL-safe identifier: lowercase ASCII
// letters and digits, runs of anything else collapsed to single hyphens,
// truncated to SlugMaxLength. Generated once at creation; never regenerated.
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', unicode.IsDigit(r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}

	slug := b.String()
	if len(slug) > SlugMaxLength {
		slug = strings.TrimRight(slug[:SlugMaxLength], "-")
	}
	return slug
}

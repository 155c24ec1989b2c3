package ports

import (
	"context"

	"echosignal/internal/domain"
)

// ArticleStore persists articles and their taxonomy.
type ArticleStore interface {
	// GetOrCreateCategory resolves a category by its slugified name,
	// creating it if absent.
	GetOrCreateCategory(ctx context.Context, name string) (domain.Category, error)

	// GetOrCreateTag resolves a tag by its slugified name, creating it if absent.
	GetOrCreateTag(ctx context.Context, name string) (domain.Tag, error)

	// FindArticleByURL returns the article with the given canonical URL,
	// or nil when none exists.
	FindArticleByURL(ctx context.Context, canonicalURL string) (*domain.Article, error)

	// CreateArticle inserts a draft article and attaches its taxonomy in a
	// single transaction. The insert is conflict-safe on the canonical URL:
	// when another writer got there first, the existing article is returned.
	CreateArticle(ctx context.Context, draft domain.Draft, categories []domain.Category, tags []domain.Tag) (domain.Article, error)
}

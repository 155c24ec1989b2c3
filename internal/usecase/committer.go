package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"echosignal/internal/domain"
	"echosignal/internal/metrics"
	"echosignal/internal/ports"
)

// CommitError reports a failed persistence attempt for one article. The
// store's transaction guarantees nothing was partially attached.
type CommitError struct {
	URL string
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit %s: %v", e.URL, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Committer persists extracted drafts: taxonomy is resolved by get-or-create,
// the canonical URL deduplicates articles, and creation attaches taxonomy in
// one transaction. Re-committing a URL is a no-op returning the prior record.
type Committer struct {
	store  ports.ArticleStore
	logger *slog.Logger
}

// NewCommitter wires the persistence adapter.
func NewCommitter(store ports.ArticleStore, logger *slog.Logger) *Committer {
	return &Committer{store: store, logger: logger}
}

// Commit upserts the draft's taxonomy and creates the article unless one with
// the same canonical URL already exists.
func (c *Committer) Commit(ctx context.Context, draft domain.Draft) (domain.Article, error) {
	categories := make([]domain.Category, 0, len(draft.Categories))
	for _, name := range draft.Categories {
		category, err := c.store.GetOrCreateCategory(ctx, name)
		if err != nil {
			return domain.Article{}, &CommitError{URL: draft.CanonicalURL, Err: fmt.Errorf("category %q: %w", name, err)}
		}
		categories = append(categories, category)
	}

	tags := make([]domain.Tag, 0, len(draft.Tags))
	for _, name := range draft.Tags {
		tag, err := c.store.GetOrCreateTag(ctx, name)
		if err != nil {
			return domain.Article{}, &CommitError{URL: draft.CanonicalURL, Err: fmt.Errorf("tag %q: %w", name, err)}
		}
		tags = append(tags, tag)
	}

	existing, err := c.store.FindArticleByURL(ctx, draft.CanonicalURL)
	if err != nil {
		return domain.Article{}, &CommitError{URL: draft.CanonicalURL, Err: fmt.Errorf("lookup: %w", err)}
	}
	if existing != nil {
		c.info("article already exists", "url", draft.CanonicalURL, "id", existing.ID)
		metrics.ArticlesSaved.WithLabelValues(draft.SourceName, "duplicate").Inc()
		return *existing, nil
	}

	article, err := c.store.CreateArticle(ctx, draft, categories, tags)
	if err != nil {
		return domain.Article{}, &CommitError{URL: draft.CanonicalURL, Err: err}
	}

	c.info("article saved", "url", draft.CanonicalURL, "id", article.ID, "title", article.Title)
	metrics.ArticlesSaved.WithLabelValues(draft.SourceName, "created").Inc()
	return article, nil
}

func (c *Committer) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"echosignal/internal/domain"
	"echosignal/internal/scrape"
)

// PipelineDeps wires the extraction collaborators into the orchestrator.
type PipelineDeps struct {
	Registry  *scrape.Registry
	Fetcher   scrape.Fetcher
	Committer *Committer
	Logger    *slog.Logger
}

// Pipeline drives resolve -> fetch -> extract -> commit for explicit URLs.
type Pipeline struct {
	registry  *scrape.Registry
	fetcher   scrape.Fetcher
	committer *Committer
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		registry:  deps.Registry,
		fetcher:   deps.Fetcher,
		committer: deps.Committer,
		logger:    deps.Logger,
	}
}

// ParseOne processes a single URL end to end and returns the persisted
// article. Field-level extraction problems never surface here; only fetch,
// dispatch, and commit failures do.
func (p *Pipeline) ParseOne(ctx context.Context, pageURL string) (*domain.Article, error) {
	strategy, err := p.registry.Resolve(pageURL)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", pageURL, err)
	}

	doc, err := p.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	draft := strategy.Extract(doc, pageURL)

	article, err := p.committer.Commit(ctx, draft)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// ParseMany processes each URL independently and maps it to the resulting
// article, or nil on failure. One bad URL never aborts the batch; duplicates
// in the input each run through the pipeline and meet the dedup check.
func (p *Pipeline) ParseMany(ctx context.Context, urls []string) map[string]*domain.Article {
	results := make(map[string]*domain.Article, len(urls))
	for _, pageURL := range urls {
		article, err := p.ParseOne(ctx, pageURL)
		if err != nil {
			p.error("url failed", "url", pageURL, "error", err)
			results[pageURL] = nil
			continue
		}
		results[pageURL] = article
	}
	return results
}

func (p *Pipeline) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}

package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"echosignal/internal/config"
	"echosignal/internal/scrape"
)

const pipelineFixture = `<html><body>
<h1>Loneliness keeps climbing, Cigna finds</h1>
<span>Updated: May 2, 2018</span>
<div class="article-body">
  <p>46% of Americans report feeling lonely, the Cigna survey of social isolation found.</p>
  <p>Experts link loneliness to mental health outcomes.</p>
</div>
</body></html>`

func newTestPipeline(t *testing.T, serverHost string, store *memStore) *Pipeline {
	t.Helper()

	registry := scrape.NewRegistry(nil)
	registry.Register(serverHost, scrape.NewCNBC(nil))

	fetcher := scrape.NewHTTPFetcher(config.HTTPConfig{
		UserAgent:         "test-agent/1.0",
		TimeoutSeconds:    5,
		RequestsPerSecond: 100,
		Burst:             10,
	}, nil)

	return NewPipeline(PipelineDeps{
		Registry:  registry,
		Fetcher:   fetcher,
		Committer: NewCommitter(store, nil),
	})
}

func TestParseOneEndToEnd(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pipelineFixture))
	}))
	defer server.Close()

	store := newMemStore()
	pipeline := newTestPipeline(t, strings.TrimPrefix(server.URL, "http://"), store)

	article, err := pipeline.ParseOne(context.Background(), server.URL+"/loneliness")
	if err != nil {
		t.Fatalf("ParseOne returned error: %v", err)
	}

	if article.Title != "Loneliness keeps climbing, Cigna finds" {
		t.Fatalf("unexpected title: %q", article.Title)
	}
	if article.CanonicalURL != server.URL+"/loneliness" {
		t.Fatalf("unexpected canonical url: %q", article.CanonicalURL)
	}
	if !strings.Contains(article.Summary, "46%") {
		t.Fatalf("summary should carry the extracted statistic: %q", article.Summary)
	}
	if len(store.articles) != 1 {
		t.Fatalf("expected one persisted article, got %d", len(store.articles))
	}
}

func TestParseOneUnsupportedSource(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	pipeline := newTestPipeline(t, "cnbc.com", store)

	_, err := pipeline.ParseOne(context.Background(), "http://unknown.example.org/post")
	if err == nil {
		t.Fatal("expected error for unsupported source")
	}
	if len(store.articles) != 0 {
		t.Fatalf("nothing should be persisted, got %d articles", len(store.articles))
	}
}

func TestParseManyIsolatesFailures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/bad") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(pipelineFixture))
	}))
	defer server.Close()

	store := newMemStore()
	pipeline := newTestPipeline(t, strings.TrimPrefix(server.URL, "http://"), store)

	urls := []string{
		server.URL + "/good-one",
		server.URL + "/bad",
		server.URL + "/good-two",
	}

	results := pipeline.ParseMany(context.Background(), urls)

	if len(results) != 3 {
		t.Fatalf("expected entries for all urls, got %d", len(results))
	}
	if results[urls[1]] != nil {
		t.Fatal("failed url should map to nil")
	}
	if results[urls[0]] == nil || results[urls[2]] == nil {
		t.Fatal("failure of one url must not abort the others")
	}
	if len(store.articles) != 2 {
		t.Fatalf("expected 2 persisted articles, got %d", len(store.articles))
	}
}

func TestParseManyDuplicateURLs(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pipelineFixture))
	}))
	defer server.Close()

	store := newMemStore()
	pipeline := newTestPipeline(t, strings.TrimPrefix(server.URL, "http://"), store)

	url := server.URL + "/loneliness"
	results := pipeline.ParseMany(context.Background(), []string{url, url})

	if results[url] == nil {
		t.Fatal("duplicate url should still resolve to the record")
	}
	if len(store.articles) != 1 {
		t.Fatalf("dedup must keep a single record, got %d", len(store.articles))
	}
}

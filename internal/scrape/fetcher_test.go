package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"echosignal/internal/config"
)

func testHTTPConfig() config.HTTPConfig {
	return config.HTTPConfig{
		UserAgent:         "test-agent/1.0",
		TimeoutSeconds:    5,
		RequestsPerSecond: 100,
		Burst:             10,
	}
}

func TestHTTPFetcherSuccess(t *testing.T) {
	t.Parallel()

	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><body><h1>Loneliness Study</h1></body></html>`))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(testHTTPConfig(), nil)

	doc, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if gotUserAgent != "test-agent/1.0" {
		t.Fatalf("unexpected user agent: %q", gotUserAgent)
	}
	if title := doc.Find("h1").Text(); title != "Loneliness Study" {
		t.Fatalf("unexpected document content: %q", title)
	}
}

func TestHTTPFetcherNonOKStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(testHTTPConfig(), nil)

	_, err := fetcher.Fetch(context.Background(), server.URL)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", fetchErr.StatusCode)
	}
}

func TestHTTPFetcherNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	fetcher := NewHTTPFetcher(testHTTPConfig(), nil)

	_, err := fetcher.Fetch(context.Background(), server.URL)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.StatusCode != 0 {
		t.Fatalf("network failure should not carry a status, got %d", fetchErr.StatusCode)
	}
}

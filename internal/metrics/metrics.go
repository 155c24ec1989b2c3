package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SlugsGenerated counts automatically generated taxonomy slugs by kind.
	SlugsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echosignal_slugs_generated_total",
		Help: "Total number of slugs automatically generated.",
	}, []string{"kind"})

	// ArticlesSaved counts commit outcomes per source (created or duplicate).
	ArticlesSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echosignal_articles_saved_total",
		Help: "Total number of article commits by outcome.",
	}, []string{"source", "result"})

	// FetchErrors counts failed page fetches by reason.
	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echosignal_fetch_errors_total",
		Help: "Total number of failed page fetches.",
	}, []string{"reason"})

	// PagesParsed counts successfully extracted pages per source.
	PagesParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echosignal_pages_parsed_total",
		Help: "Total number of pages run through an extraction strategy.",
	}, []string{"source"})
)

// Serve exposes /metrics on the given address in a background goroutine.
func Serve(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Error("metrics listener stopped", "addr", addr, "error", err)
			}
		}
	}()
}

package main

import (
	"context"
	"fmt"
	"os"

	"echosignal/internal/app"
	"echosignal/internal/config"
	"echosignal/internal/logging"
)

func main() {
	urls := os.Args[1:]
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: echosignal <url> [url ...]")
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	results := application.Run(ctx, urls)

	parsed := 0
	for _, url := range urls {
		if article := results[url]; article != nil {
			parsed++
			fmt.Printf("ok   %s -> %q (id=%d)\n", url, article.Title, article.ID)
		} else {
			fmt.Printf("fail %s\n", url)
		}
	}
	fmt.Printf("parsed %d/%d urls\n", parsed, len(urls))

	if parsed == 0 {
		os.Exit(1)
	}
}

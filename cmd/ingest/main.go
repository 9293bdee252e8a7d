package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kovalyov-valentin/autoblog/internal/config"
	"github.com/kovalyov-valentin/autoblog/internal/fetcher"
	"github.com/kovalyov-valentin/autoblog/internal/source"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
	"github.com/kovalyov-valentin/autoblog/internal/upstream"
)

func main() {
	cfg := config.Get()

	// Лимит и источник проверяем до любого запроса в сеть
	if err := cfg.RequireFeed(); err != nil {
		log.Printf("[ERROR] %v", err)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("[ERROR] failed to connect to database: %v", err)
		return
	}
	defer db.Close()

	httpClient := upstream.NewHTTPClient(cfg.HTTPTimeout)

	var src fetcher.Source
	switch cfg.FeedKind {
	case "rss":
		src = source.NewRSSSource(cfg.FeedURL, cfg.FeedLimit, httpClient)
	default:
		src = source.NewRedditSource(cfg.FeedBaseURL, cfg.FeedSubreddit, cfg.FeedLimit, httpClient)
	}

	f := fetcher.New(storage.NewTopicStorage(db), src, cfg.FeedFilterKeywords)

	inserted, err := f.Fetch(ctx)
	if err != nil {
		log.Printf("[ERROR] topic ingestion failed: %v", err)
		return
	}

	log.Printf("[INFO] topic ingestion done, %d new topics", inserted)
}

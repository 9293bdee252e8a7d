package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kovalyov-valentin/autoblog/internal/config"
	"github.com/kovalyov-valentin/autoblog/internal/enricher"
	"github.com/kovalyov-valentin/autoblog/internal/image"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
	"github.com/kovalyov-valentin/autoblog/internal/upstream"
)

func main() {
	cfg := config.Get()

	if err := cfg.RequireUnsplash(); err != nil {
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

	e := enricher.New(
		storage.NewDraftStorage(db),
		image.NewUnsplash(cfg.UnsplashBaseURL, cfg.UnsplashAccessKey, upstream.NewHTTPClient(cfg.HTTPTimeout)),
	)

	draft, err := e.Run(ctx)
	if err != nil {
		log.Printf("[ERROR] image enrichment failed: %v", err)
		return
	}

	if draft != nil {
		log.Printf("[INFO] image enrichment done, draft %d has %d images", draft.ID, len(draft.Images))
	}
}

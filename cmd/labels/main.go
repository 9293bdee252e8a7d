package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kovalyov-valentin/autoblog/internal/ai"
	"github.com/kovalyov-valentin/autoblog/internal/config"
	"github.com/kovalyov-valentin/autoblog/internal/labeler"
	"github.com/kovalyov-valentin/autoblog/internal/retry"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
	"github.com/kovalyov-valentin/autoblog/internal/upstream"
)

func main() {
	cfg := config.Get()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Без ключа AI дальше не идем, ни в сеть, ни в базу
	generator, err := ai.New(ctx, cfg, upstream.NewHTTPClient(cfg.HTTPTimeout))
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return
	}

	db, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("[ERROR] failed to connect to database: %v", err)
		return
	}
	defer db.Close()

	l := labeler.New(
		storage.NewTopicStorage(db),
		storage.NewLabelStorage(db),
		generator,
		retry.OnOverload(cfg.AIMaxAttempts, cfg.AIRetryBaseDelay),
	)

	inserted, err := l.Run(ctx)
	if err != nil {
		log.Printf("[ERROR] label synthesis failed: %v", err)
		return
	}

	log.Printf("[INFO] label synthesis done, %d new labels", inserted)
}

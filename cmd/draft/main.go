package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/autoblog/internal/ai"
	"github.com/kovalyov-valentin/autoblog/internal/config"
	"github.com/kovalyov-valentin/autoblog/internal/drafter"
	"github.com/kovalyov-valentin/autoblog/internal/excerpt"
	"github.com/kovalyov-valentin/autoblog/internal/notifier"
	"github.com/kovalyov-valentin/autoblog/internal/retry"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
	"github.com/kovalyov-valentin/autoblog/internal/upstream"
)

func main() {
	cfg := config.Get()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := upstream.NewHTTPClient(cfg.HTTPTimeout)

	generator, err := ai.New(ctx, cfg, httpClient)
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

	opts := []drafter.Option{drafter.WithNotifier(notifiers(cfg))}
	if cfg.DraftFetchExcerpt {
		opts = append(opts, drafter.WithExcerpter(excerpt.New(httpClient, excerpt.DefaultMaxRunes)))
	}

	d := drafter.New(
		storage.NewLabelStorage(db),
		storage.NewTopicStorage(db),
		storage.NewDraftStorage(db),
		generator,
		retry.OnOverload(cfg.DraftMaxAttempts, cfg.AIRetryBaseDelay),
		opts...,
	)

	draft, err := d.Run(ctx)
	if err != nil {
		log.Printf("[ERROR] draft synthesis failed: %v", err)
		return
	}

	if draft != nil {
		log.Printf("[INFO] draft synthesis done, draft %d", draft.ID)
	}
}

// Собираем тех, кому есть чем слать уведомления
func notifiers(cfg config.Config) notifier.Multi {
	var out notifier.Multi

	if cfg.EmailEnabled() {
		client, err := notifier.NewSMTPClient(cfg.EmailHost, cfg.EmailPort, cfg.EmailUser, cfg.EmailPass)
		if err != nil {
			log.Printf("[ERROR] email notifications disabled: %v", err)
		} else {
			out = append(out, notifier.NewEmail(client, cfg.EmailUser, cfg.EmailRecipient(), cfg.ReviewBaseURL))
		}
	} else {
		log.Printf("[WARN] EMAIL_USER or EMAIL_PASS not set, email notifications disabled")
	}

	if cfg.TelegramEnabled() {
		botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			log.Printf("[ERROR] telegram notifications disabled: %v", err)
		} else {
			out = append(out, notifier.NewTelegram(botAPI, cfg.TelegramChannelID, cfg.ReviewBaseURL))
		}
	}

	return out
}

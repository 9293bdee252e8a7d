package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/autoblog/internal/bot"
	"github.com/kovalyov-valentin/autoblog/internal/bot/middleware"
	"github.com/kovalyov-valentin/autoblog/internal/botkit"
	"github.com/kovalyov-valentin/autoblog/internal/config"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
)

func main() {
	cfg := config.Get()

	if !cfg.TelegramEnabled() {
		log.Printf("[ERROR] %v: TELEGRAM_BOT_TOKEN and TELEGRAM_CHANNEL_ID", config.ErrMissing)
		return
	}

	// Создаем бота, используя токен из конфига
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Printf("[ERROR] failed to create bot: %v", err)
		return
	}

	//Graceful Shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("[ERROR] failed to connect to database: %v", err)
		return
	}
	defer db.Close()

	drafts := storage.NewDraftStorage(db)

	adminBot := botkit.New(botAPI)
	adminBot.RegisterCmdView("start", bot.ViewCmdStart())
	adminBot.RegisterCmdView("drafts", bot.ViewCmdDrafts(drafts))
	// Одобрять могут только админы канала
	adminBot.RegisterCmdView(
		"approve",
		middleware.AdminOnly(
			cfg.TelegramChannelID,
			bot.ViewCmdApprove(drafts),
		),
	)

	if err := adminBot.Run(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("[ERROR] failed to run bot: %v", err)
			return
		}

		log.Println("bot stopped")
	}
}

package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/autoblog/internal/botkit"
)

const startText = "Бот для модерации черновиков блога.\n\n" +
	"/drafts - последние черновики\n" +
	"/approve <id> - одобрить черновик (только админы канала)"

func ViewCmdStart() botkit.ViewFunc {
	return func(_ context.Context, bot botkit.API, update tgbotapi.Update) error {
		if _, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, startText)); err != nil {
			return err
		}
		return nil
	}
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/autoblog/internal/botkit"
	"github.com/kovalyov-valentin/autoblog/internal/botkit/markup"
	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
)

type DraftApprover interface {
	Approve(ctx context.Context, id int64) (model.Draft, error)
}

// Одобрение черновика по id: /approve 5
func ViewCmdApprove(approver DraftApprover) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		id, err := strconv.ParseInt(strings.TrimSpace(update.Message.CommandArguments()), 10, 64)
		if err != nil || id <= 0 {
			// Пользователь ошибся с вводом, это не ошибка бота
			_, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "Использование: /approve <id>"))
			return err
		}

		draft, err := approver.Approve(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				_, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, fmt.Sprintf("Черновик %d не найден", id)))
				return err
			}
			return err
		}

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, fmt.Sprintf(
			"Черновик `%d` одобрен: %s",
			draft.ID,
			markup.Bold(draft.Title),
		))
		reply.ParseMode = tgbotapi.ModeMarkdownV2

		if _, err := bot.Send(reply); err != nil {
			return err
		}
		return nil
	}
}

package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/autoblog/internal/botkit"
	"github.com/kovalyov-valentin/autoblog/internal/botkit/markup"
	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/samber/lo"
)

// Сколько черновиков показываем в /drafts
const draftsLimit = 10

type DraftLister interface {
	Drafts(ctx context.Context, limit uint64) ([]model.Draft, error)
}

func ViewCmdDrafts(lister DraftLister) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		drafts, err := lister.Drafts(ctx, draftsLimit)
		if err != nil {
			return err
		}

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, formatDrafts(drafts))
		reply.ParseMode = tgbotapi.ModeMarkdownV2

		if _, err := bot.Send(reply); err != nil {
			return err
		}
		return nil
	}
}

func formatDrafts(drafts []model.Draft) string {
	if len(drafts) == 0 {
		return "Черновиков пока нет"
	}

	infos := lo.Map(drafts, func(d model.Draft, _ int) string {
		return formatDraft(d)
	})

	return fmt.Sprintf(
		"Последние черновики \\(%d\\):\n\n%s",
		len(drafts),
		strings.Join(infos, "\n\n"),
	)
}

func formatDraft(d model.Draft) string {
	icon := "📝"
	if d.Status == model.DraftApproved {
		icon = "✅"
	}

	return fmt.Sprintf(
		"%s %s\nID: `%d` \\| %s \\| картинок: %d",
		icon,
		markup.Bold(d.Title),
		d.ID,
		markup.EscapeForMarkdown(string(d.Status)),
		len(d.Images),
	)
}

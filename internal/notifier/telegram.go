package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/autoblog/internal/botkit/markup"
	"github.com/kovalyov-valentin/autoblog/internal/model"
)

type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram пишет о новом черновике в канал
type Telegram struct {
	bot           MessageSender
	channelID     int64
	reviewBaseURL string
}

func NewTelegram(bot MessageSender, channelID int64, reviewBaseURL string) *Telegram {
	return &Telegram{
		bot:           bot,
		channelID:     channelID,
		reviewBaseURL: reviewBaseURL,
	}
}

func (t *Telegram) NotifyDraft(_ context.Context, draft model.Draft) error {
	msg := tgbotapi.NewMessage(t.channelID, telegramText(draft, ReviewLink(t.reviewBaseURL, draft.ID)))
	// Сообщение парсится как markdown, поэтому все аргументы экранируем
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("notifier.Telegram.NotifyDraft: %w", err)
	}
	return nil
}

// Сначала жирным заголовок, потом summary, потом ссылка на ревью
func telegramText(draft model.Draft, link string) string {
	const msgFormat = "🆕 %s\n\n%s\n\n%s"

	return fmt.Sprintf(
		msgFormat,
		markup.Bold(draft.Title),
		markup.EscapeForMarkdown(draft.Summary),
		markup.EscapeForMarkdown(link),
	)
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetChatAdministrators(tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error) {
	return nil, nil
}

func command(cmd, args string) tgbotapi.Update {
	text := "/" + cmd
	if args != "" {
		text += " " + args
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: 100},
		From:     &tgbotapi.User{ID: 42},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd) + 1}},
	}}
}

type fakeDrafts struct {
	drafts   []model.Draft
	err      error
	limit    uint64
	approved []int64
}

func (f *fakeDrafts) Drafts(_ context.Context, limit uint64) ([]model.Draft, error) {
	f.limit = limit
	return f.drafts, f.err
}

func (f *fakeDrafts) Approve(_ context.Context, id int64) (model.Draft, error) {
	if f.err != nil {
		return model.Draft{}, f.err
	}
	f.approved = append(f.approved, id)
	return model.Draft{ID: id, Title: "AI chips v2.0", Status: model.DraftApproved}, nil
}

func TestViewCmdDrafts(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	drafts := &fakeDrafts{drafts: []model.Draft{
		{ID: 2, Title: "Rust (again)", Status: model.DraftPending},
		{ID: 1, Title: "AI chips", Status: model.DraftApproved, Images: []string{"https://img/x.jpg"}},
	}}

	require.NoError(t, ViewCmdDrafts(drafts)(context.Background(), api, command("drafts", "")))
	require.EqualValues(t, 10, drafts.limit)
	require.Len(t, api.sent, 1)
	require.Equal(t, tgbotapi.ModeMarkdownV2, api.sent[0].ParseMode)
	require.Contains(t, api.sent[0].Text, "📝 *Rust \\(again\\)*\nID: `2` \\| pending \\| картинок: 0")
	require.Contains(t, api.sent[0].Text, "✅ *AI chips*\nID: `1` \\| approved \\| картинок: 1")
}

func TestViewCmdDrafts_Empty(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	require.NoError(t, ViewCmdDrafts(&fakeDrafts{})(context.Background(), api, command("drafts", "")))
	require.Equal(t, "Черновиков пока нет", api.sent[0].Text)
}

func TestViewCmdApprove(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	drafts := &fakeDrafts{}

	require.NoError(t, ViewCmdApprove(drafts)(context.Background(), api, command("approve", "5")))
	require.Equal(t, []int64{5}, drafts.approved)
	require.Equal(t, "Черновик `5` одобрен: *AI chips v2\\.0*", api.sent[0].Text)
}

func TestViewCmdApprove_BadArgs(t *testing.T) {
	t.Parallel()

	for _, args := range []string{"", "abc", "-1"} {
		api := &fakeAPI{}
		drafts := &fakeDrafts{}

		require.NoError(t, ViewCmdApprove(drafts)(context.Background(), api, command("approve", args)))
		require.Empty(t, drafts.approved)
		require.Equal(t, "Использование: /approve <id>", api.sent[0].Text)
	}
}

func TestViewCmdApprove_NotFound(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	drafts := &fakeDrafts{err: fmt.Errorf("storage.DraftPostgresStorage.Approve: %w", storage.ErrNotFound)}

	require.NoError(t, ViewCmdApprove(drafts)(context.Background(), api, command("approve", "999")))
	require.Equal(t, "Черновик 999 не найден", api.sent[0].Text)
}

func TestViewCmdApprove_StoreError(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	drafts := &fakeDrafts{err: errors.New("connection reset")}

	require.Error(t, ViewCmdApprove(drafts)(context.Background(), api, command("approve", "5")))
	require.Empty(t, api.sent)
}

func TestViewCmdStart(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	require.NoError(t, ViewCmdStart()(context.Background(), api, command("start", "")))
	require.Contains(t, api.sent[0].Text, "/approve <id>")
}

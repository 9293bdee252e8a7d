package notifier

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kovalyov-valentin/autoblog/internal/model"
)

type Notifier interface {
	NotifyDraft(ctx context.Context, draft model.Draft) error
}

// Multi оповещает всех по очереди.
// Ошибки только логируются: черновик уже создан, и от уведомлений он не зависит.
type Multi []Notifier

func (m Multi) NotifyDraft(ctx context.Context, draft model.Draft) error {
	for _, n := range m {
		if err := n.NotifyDraft(ctx, draft); err != nil {
			log.Printf("[ERROR] %T: failed to notify about draft %d: %v", n, draft.ID, err)
		}
	}
	return nil
}

// ReviewLink - ссылка на страницу черновика в админке
func ReviewLink(baseURL string, id int64) string {
	return fmt.Sprintf("%s/ui/drafts/%d", strings.TrimRight(baseURL, "/"), id)
}

package enricher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
)

type DraftStorage interface {
	NextWithoutImage(ctx context.Context) (model.Draft, error)
	AppendImage(ctx context.Context, id int64, url string) (model.Draft, error)
}

type ImageSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Этап подбора картинки к черновику
type Enricher struct {
	drafts DraftStorage
	images ImageSearcher
}

func New(drafts DraftStorage, images ImageSearcher) *Enricher {
	return &Enricher{drafts: drafts, images: images}
}

// Run добавляет одну картинку к самому свежему pending черновику без картинок.
// Возвращает обновленный черновик или nil, если делать нечего.
func (e *Enricher) Run(ctx context.Context) (*model.Draft, error) {
	// Кандидат: самый свежий pending черновик, у которого еще нет ни одной картинки
	draft, err := e.drafts.NextWithoutImage(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Printf("[INFO] no pending drafts without images")
			return nil, nil
		}
		return nil, fmt.Errorf("selecting draft: %w", err)
	}

	prompt := strings.TrimSpace(draft.Prompt())
	if prompt == "" {
		log.Printf("[WARN] draft %d has no image prompt, skipping", draft.ID)
		return nil, nil
	}

	// Если поиск не удался, черновик остается без картинки и попадет в следующий запуск
	url, err := e.images.Search(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("searching image for draft %d: %w", draft.ID, err)
	}

	// Картинку только дописываем в конец, старые не трогаем
	updated, err := e.drafts.AppendImage(ctx, draft.ID, url)
	if err != nil {
		return nil, fmt.Errorf("saving image for draft %d: %w", draft.ID, err)
	}

	log.Printf("[INFO] draft %d: added image %s", updated.ID, url)

	return &updated, nil
}

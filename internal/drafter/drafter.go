package drafter

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/kovalyov-valentin/autoblog/internal/ai"
	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/kovalyov-valentin/autoblog/internal/retry"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
)

// Сколько свежих тем идет в промпт как контекст
const topicsSample = 5

type LabelProvider interface {
	Latest(ctx context.Context) (model.TopicLabel, error)
}

type TopicProvider interface {
	Latest(ctx context.Context, limit uint64) ([]model.Topic, error)
}

type DraftStorage interface {
	Add(ctx context.Context, content model.DraftContent, topicID int64) (model.Draft, error)
}

type Notifier interface {
	NotifyDraft(ctx context.Context, draft model.Draft) error
}

// Достает читаемый текст страницы по ссылке
type Excerpter interface {
	Excerpt(ctx context.Context, url string) (string, error)
}

// Этап генерации черновика по последней метке
type Drafter struct {
	labels    LabelProvider
	topics    TopicProvider
	drafts    DraftStorage
	generator ai.Generator
	policy    retry.Policy
	notifier  Notifier
	excerpter Excerpter
}

type Option func(*Drafter)

// WithNotifier - кого оповестить о новом черновике
func WithNotifier(n Notifier) Option {
	return func(d *Drafter) { d.notifier = n }
}

// WithExcerpter включает подмешивание текста первой темы в промпт
func WithExcerpter(e Excerpter) Option {
	return func(d *Drafter) { d.excerpter = e }
}

func New(
	labels LabelProvider,
	topics TopicProvider,
	drafts DraftStorage,
	generator ai.Generator,
	policy retry.Policy,
	opts ...Option,
) *Drafter {
	d := &Drafter{
		labels:    labels,
		topics:    topics,
		drafts:    drafts,
		generator: generator,
		policy:    policy,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Run создает один черновик.
// Если метки или темы еще нет, возвращает (nil, nil): кандидата нет, это не ошибка.
func (d *Drafter) Run(ctx context.Context) (*model.Draft, error) {
	// Пишем всегда по самой свежей метке
	label, err := d.labels.Latest(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Printf("[INFO] no candidate: no topic labels yet")
			return nil, nil
		}
		return nil, fmt.Errorf("loading latest label: %w", err)
	}

	topics, err := d.topics.Latest(ctx, topicsSample)
	if err != nil {
		return nil, fmt.Errorf("loading latest topics: %w", err)
	}

	if len(topics) == 0 {
		log.Printf("[INFO] no candidate: no topics for label %q", label.Label)
		return nil, nil
	}

	// Отрывок статьи необязателен: без него модель пишет только по заголовкам
	prompt := ai.DraftPrompt(label.Label, topics, d.excerpt(ctx, topics[0]))

	var content model.DraftContent
	err = d.policy.Do(ctx, "draft", func(ctx context.Context) error {
		text, err := d.generator.Generate(ctx, prompt, ai.DraftSchema)
		if err != nil {
			return err
		}

		content, err = ai.DecodeDraft(text)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("generating draft for label %q: %w", label.Label, err)
	}

	// Черновик привязываем к самой свежей теме
	draft, err := d.drafts.Add(ctx, content, topics[0].ID)
	if err != nil {
		return nil, fmt.Errorf("saving draft: %w", err)
	}

	log.Printf("[INFO] created draft %d %q for label %q", draft.ID, draft.Title, label.Label)

	// Черновик уже сохранен, уведомления на результат не влияют
	if d.notifier != nil {
		if err := d.notifier.NotifyDraft(ctx, draft); err != nil {
			log.Printf("[ERROR] notifying about draft %d: %v", draft.ID, err)
		}
	}

	return &draft, nil
}

// excerpt достает текст статьи по ссылке темы. Любая ошибка дает пустую строку.
func (d *Drafter) excerpt(ctx context.Context, topic model.Topic) string {
	if d.excerpter == nil || topic.URL == "" {
		return ""
	}

	text, err := d.excerpter.Excerpt(ctx, topic.URL)
	if err != nil {
		log.Printf("[WARN] failed to fetch excerpt for %s: %v", topic.URL, err)
		return ""
	}

	return text
}

package labeler

import (
	"context"
	"fmt"
	"log"

	"github.com/kovalyov-valentin/autoblog/internal/ai"
	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/kovalyov-valentin/autoblog/internal/retry"
	"github.com/samber/lo"
)

// Сколько последних тем отдаем модели
const topicsSample = 3

// Откуда берем свежие темы
type TopicProvider interface {
	Latest(ctx context.Context, limit uint64) ([]model.Topic, error)
}

// Куда складываем метки. Уже существующие метки не дублируются.
type LabelStorage interface {
	Store(ctx context.Context, labels []string) (int64, error)
}

// Этап генерации меток по свежим темам
type Labeler struct {
	topics    TopicProvider
	labels    LabelStorage
	generator ai.Generator
	policy    retry.Policy
}

func New(topics TopicProvider, labels LabelStorage, generator ai.Generator, policy retry.Policy) *Labeler {
	return &Labeler{
		topics:    topics,
		labels:    labels,
		generator: generator,
		policy:    policy,
	}
}

// Run генерирует метки и сохраняет новые.
// Возвращает количество вставленных меток.
func (l *Labeler) Run(ctx context.Context) (int64, error) {
	// Берем несколько последних тем, больше модели не нужно
	topics, err := l.topics.Latest(ctx, topicsSample)
	if err != nil {
		return 0, fmt.Errorf("loading latest topics: %w", err)
	}

	if len(topics) == 0 {
		log.Printf("[INFO] no topics yet, nothing to label")
		return 0, nil
	}

	// Модели отдаем только заголовки
	titles := lo.Map(topics, func(t model.Topic, _ int) string { return t.Title })
	prompt := ai.LabelsPrompt(titles)

	// Генерацию и разбор ответа повторяем вместе: policy сама решает,
	// какие ошибки стоит повторить (только 503), а какие нет
	var labels []string
	err = l.policy.Do(ctx, "labels", func(ctx context.Context) error {
		text, err := l.generator.Generate(ctx, prompt, ai.LabelsSchema)
		if err != nil {
			return err
		}

		labels, err = ai.DecodeLabels(text)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("generating labels: %w", err)
	}

	// Модель иногда повторяет одну и ту же метку
	labels = lo.Uniq(labels)
	if len(labels) == 0 {
		log.Printf("[WARN] model returned no labels for %d topics", len(topics))
		return 0, nil
	}

	inserted, err := l.labels.Store(ctx, labels)
	if err != nil {
		return 0, fmt.Errorf("storing labels: %w", err)
	}

	log.Printf("[INFO] generated %d labels, inserted %d new", len(labels), inserted)

	return inserted, nil
}

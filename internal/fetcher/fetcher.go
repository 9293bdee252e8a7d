package fetcher

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/samber/lo"
	"github.com/tomakado/containers/set"
)

// Хранилище тем. Store пишет пачку и возвращает, сколько строк реально вставилось,
// дубли по уникальным ключам молча пропускаются.
type TopicStorage interface {
	Store(ctx context.Context, topics []model.Topic) (int64, error)
}

// Интерфейс источника
type Source interface {
	// Тег источника, пишется в topics.source
	Name() string
	Fetch(ctx context.Context) ([]model.Item, error)
}

// Этап загрузки тем.
// Один запуск = один запрос к ленте и одна вставка пачкой.
type Fetcher struct {
	topics TopicStorage
	source Source

	// Фильтрация тем по ключевым словам
	filterKeyWords []string
}

// Ключевые слова приводим к нижнему регистру сразу, чтобы не делать это на каждой теме
func New(topics TopicStorage, source Source, filterKeyWords []string) *Fetcher {
	return &Fetcher{
		topics:         topics,
		source:         source,
		filterKeyWords: lo.Map(filterKeyWords, func(k string, _ int) string { return strings.ToLower(strings.TrimSpace(k)) }),
	}
}

// Fetch забирает ленту и сохраняет новые темы.
// Возвращает количество реально вставленных строк.
func (f *Fetcher) Fetch(ctx context.Context) (int64, error) {
	items, err := f.source.Fetch(ctx)
	if err != nil {
		// Лента не ответила, в базу ничего не пишем
		return 0, fmt.Errorf("fetching items from source %s: %w", f.source.Name(), err)
	}

	// Отфильтровываем лишнее и превращаем элементы ленты в темы
	topics := f.toTopics(items)
	if len(topics) == 0 {
		log.Printf("[INFO] source %s returned no new items", f.source.Name())
		return 0, nil
	}

	// Сохраняем все одной пачкой. Уже известные темы база отбросит сама.
	inserted, err := f.topics.Store(ctx, topics)
	if err != nil {
		return 0, fmt.Errorf("storing topics from source %s: %w", f.source.Name(), err)
	}

	log.Printf("[INFO] source %s: fetched %d items, inserted %d topics", f.source.Name(), len(items), inserted)

	return inserted, nil
}

// toTopics готовит темы к вставке
func (f *Fetcher) toTopics(items []model.Item) []model.Topic {
	// Сначала выкидываем пустые и отфильтрованные по ключевым словам
	items = lo.Filter(items, func(item model.Item, _ int) bool {
		return !f.itemShouldBeSkipped(item)
	})

	// Уникальность в базе по (title, source) и (url, source).
	// Дубли внутри одной пачки убираем здесь же.
	items = lo.UniqBy(items, func(item model.Item) string { return item.Title })
	items = lo.UniqBy(items, func(item model.Item) string { return item.Link })

	// Категорию ленты кладем в subreddit, для RSS это название ленты
	return lo.Map(items, func(item model.Item, _ int) model.Topic {
		return model.Topic{
			Title:     item.Title,
			Subreddit: item.Category,
			Score:     item.Score,
			URL:       item.Link,
			Source:    f.source.Name(),
		}
	})
}

// Проходимся по категориям и заголовку.
// Если нашли ключевое слово, тему пропускаем.
func (f *Fetcher) itemShouldBeSkipped(item model.Item) bool {
	if strings.TrimSpace(item.Title) == "" {
		return true
	}

	// Собираем множество категорий элемента, включая категорию самой ленты
	categoriesSet := set.New(lo.Map(append([]string{item.Category}, item.Categories...), func(c string, _ int) string {
		return strings.ToLower(c)
	})...)

	title := strings.ToLower(item.Title)

	for _, keyword := range f.filterKeyWords {
		if keyword == "" {
			continue
		}

		if categoriesSet.Contains(keyword) || strings.Contains(title, keyword) {
			return true
		}
	}

	return false
}

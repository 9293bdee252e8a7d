package source

import (
	"context"
	"net/http"

	"github.com/SlyMarbo/rss"
	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/samber/lo"
)

// RSS клиент для любой RSS/Atom ленты.
// Рейтинга у элементов ленты нет, поэтому Score всегда 0.
type RSSSource struct {
	// URL откуда мы забираем данные
	URL string
	// Сколько элементов ленты берем за раз, 0 значит все
	limit  int
	client *http.Client
}

func NewRSSSource(url string, limit int, client *http.Client) RSSSource {
	if client == nil {
		client = http.DefaultClient
	}
	return RSSSource{URL: url, limit: limit, client: client}
}

func (s RSSSource) Name() string {
	return "rss"
}

func (s RSSSource) Fetch(ctx context.Context) ([]model.Item, error) {
	feed, err := s.loadFeed(ctx)
	if err != nil {
		return nil, err
	}

	items := feed.Items
	// У RSS нет параметра limit в запросе, поэтому режем уже загруженную ленту
	if s.limit > 0 {
		items = lo.Subset(items, 0, uint(s.limit))
	}

	return lo.Map(items, func(item *rss.Item, _ int) model.Item {
		return model.Item{
			Title:      item.Title,
			Category:   feed.Title,
			Categories: item.Categories,
			Link:       item.Link,
			Date:       item.Date,
		}
	}), nil
}

// rss.Fetch не принимает контекст, поэтому ждем его результат в горутине
// и выходим раньше, если контекст отменили
func (s RSSSource) loadFeed(ctx context.Context) (*rss.Feed, error) {
	type result struct {
		feed *rss.Feed
		err  error
	}

	// Буфер на одно значение, чтобы горутина не повисла, если мы уже ушли по ctx.Done
	resCh := make(chan result, 1)

	go func() {
		feed, err := rss.FetchByClient(s.URL, s.client)
		resCh <- result{feed: feed, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resCh:
		return res.feed, res.err
	}
}

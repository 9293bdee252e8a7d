package model

import "time"

// Элемент ленты, как он пришел из источника
type Item struct {
	// Заголовок поста
	Title string
	// Сабреддит или название ленты
	Category string
	// Категории (теги) элемента, если источник их отдает
	Categories []string
	// Рейтинг в источнике. У RSS всегда 0
	Score int
	// Ссылка
	Link string
	// Дата публикации в источнике
	Date time.Time
}

// Тема, сохраненная из ленты
type Topic struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Subreddit string `json:"subreddit"`
	Score     int    `json:"score"`
	URL       string `json:"url"`
	// Откуда пришла тема: reddit, rss, ping
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Метка, которую сгенерировал AI по последним темам
type TopicLabel struct {
	ID        int64
	Label     string
	CreatedAt time.Time
}

type DraftStatus string

const (
	DraftPending  DraftStatus = "pending"
	DraftApproved DraftStatus = "approved"
)

// Черновик статьи.
// Статус меняется только в одну сторону: pending -> approved.
// Images только растет.
type Draft struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Summary     string      `json:"summary"`
	Body        string      `json:"body"`
	ImagePrompt *string     `json:"imagePrompt"`
	Images      []string    `json:"images"`
	Status      DraftStatus `json:"status"`
	TopicID     *int64      `json:"topicId"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Промпт для картинки, пустая строка если его нет
func (d Draft) Prompt() string {
	if d.ImagePrompt == nil {
		return ""
	}
	return *d.ImagePrompt
}

// Поля, которые генерирует AI и которые можно править из админки
type DraftContent struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Body        string `json:"body"`
	ImagePrompt string `json:"imagePrompt"`
}

// Правка черновика из админки. nil в ImagePrompt значит "не трогать".
type DraftUpdate struct {
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
	Body        string  `json:"body"`
	ImagePrompt *string `json:"imagePrompt"`
}

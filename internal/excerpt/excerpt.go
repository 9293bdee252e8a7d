package excerpt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/kovalyov-valentin/autoblog/internal/upstream"
)

// Сколько символов текста страницы отдаем в промпт
const DefaultMaxRunes = 1500

// Больше страницы читать не будем
const maxPageBytes = 2 << 20

// Fetcher скачивает страницу и достает из нее читаемый текст
type Fetcher struct {
	client   *http.Client
	maxRunes int
}

func New(client *http.Client, maxRunes int) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if maxRunes <= 0 {
		maxRunes = DefaultMaxRunes
	}
	return &Fetcher{client: client, maxRunes: maxRunes}
}

func (f *Fetcher) Excerpt(ctx context.Context, pageURL string) (string, error) {
	const op = "excerpt.Fetcher.Excerpt"

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := upstream.CheckResponse("page", resp); err != nil {
		return "", err
	}

	doc, err := readability.FromReader(io.LimitReader(resp.Body, maxPageBytes), parsed)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return truncate(cleanText(doc.TextContent), f.maxRunes), nil
}

// readability оставляет много пустых строк.
// Три и больше переводов строки подряд схлопываем в один.
var redundantNewLines = regexp.MustCompile(`\n{3,}`)

func cleanText(text string) string {
	return strings.TrimSpace(redundantNewLines.ReplaceAllString(text, "\n"))
}

func truncate(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return strings.TrimSpace(string(runes[:maxRunes])) + "..."
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/kovalyov-valentin/autoblog/internal/upstream"
	"github.com/samber/lo"
)

// Reddit отдает hot посты сабреддита в JSON без авторизации,
// но без User-Agent быстро начинает отвечать 429
const userAgent = "autoblog/1.0 (+https://github.com/kovalyov-valentin/autoblog)"

// Ссылка на пост строится от permalink, а не от url поста (там может быть внешний сайт)
const redditURL = "https://reddit.com"

type RedditSource struct {
	baseURL   string
	subreddit string
	limit     int
	client    *http.Client
}

func NewRedditSource(baseURL, subreddit string, limit int, client *http.Client) RedditSource {
	if client == nil {
		client = http.DefaultClient
	}
	return RedditSource{
		baseURL:   strings.TrimRight(baseURL, "/"),
		subreddit: subreddit,
		limit:     limit,
		client:    client,
	}
}

func (s RedditSource) Name() string {
	return "reddit"
}

func (s RedditSource) Fetch(ctx context.Context) ([]model.Item, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%s", s.baseURL, url.PathEscape(s.subreddit), strconv.Itoa(s.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("source.RedditSource.Fetch: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source.RedditSource.Fetch: %w", err)
	}
	defer resp.Body.Close()

	if err := upstream.CheckResponse("reddit", resp); err != nil {
		return nil, err
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("source.RedditSource.Fetch: decode listing: %w", err)
	}

	return lo.Map(listing.Data.Children, func(child redditChild, _ int) model.Item {
		post := child.Data
		return model.Item{
			Title:    post.Title,
			Category: post.Subreddit,
			Score:    post.Score,
			Link:     redditURL + post.Permalink,
			Date:     time.Unix(int64(post.CreatedUTC), 0).UTC(),
		}
	}), nil
}

type redditListing struct {
	Data struct {
		Children []redditChild `json:"children"`
	} `json:"data"`
}

type redditChild struct {
	Data struct {
		Title      string  `json:"title"`
		Subreddit  string  `json:"subreddit"`
		Score      int     `json:"score"`
		Permalink  string  `json:"permalink"`
		CreatedUTC float64 `json:"created_utc"`
	} `json:"data"`
}

package image

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kovalyov-valentin/autoblog/internal/upstream"
)

// ErrNoResults - поиск ничего не нашел
var ErrNoResults = errors.New("image search returned no results")

// Клиент поиска картинок Unsplash
type Unsplash struct {
	baseURL   string
	accessKey string
	client    *http.Client
}

func NewUnsplash(baseURL, accessKey string, client *http.Client) *Unsplash {
	if client == nil {
		client = http.DefaultClient
	}
	return &Unsplash{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		client:    client,
	}
}

// Search ищет одну горизонтальную картинку и возвращает ее url
func (u *Unsplash) Search(ctx context.Context, query string) (string, error) {
	const op = "image.Unsplash.Search"

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Client-ID "+u.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := upstream.CheckResponse("unsplash", resp); err != nil {
		return "", err
	}

	var result searchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, err)
	}

	if len(result.Results) == 0 || result.Results[0].URLs.Regular == "" {
		return "", fmt.Errorf("%s: %q: %w", op, query, ErrNoResults)
	}

	return result.Results[0].URLs.Regular, nil
}

type searchResult struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

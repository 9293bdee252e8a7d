package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kovalyov-valentin/autoblog/internal/upstream"
	"github.com/samber/lo"
	"google.golang.org/genai"
)

// Gemini ходит в Gemini API в режиме JSON ответа со схемой
type Gemini struct {
	client *genai.Client
	model  string
}

type GeminiOption func(*genai.ClientConfig)

func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = baseURL
	}
}

func WithGeminiHTTPClient(hc *http.Client) GeminiOption {
	return func(c *genai.ClientConfig) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

func NewGemini(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("ai.NewGemini: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string, schema *Schema) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenaiSchema(schema),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("ai.Gemini.Generate: %w", normalizeGeminiError(err))
	}

	text := resp.Text()
	if text == "" {
		return "", &SchemaError{Reason: "response has no text content"}
	}

	return text, nil
}

// Ошибки API приводим к upstream.StatusError, чтобы ретраи смотрели на статус
func normalizeGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &upstream.StatusError{Service: "gemini", Code: apiErr.Code, Message: apiErr.Message}
	}
	return err
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        genai.Type(s.Type),
		Description: s.Description,
		Items:       toGenaiSchema(s.Items),
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = lo.MapValues(s.Properties, func(p *Schema, _ string) *genai.Schema {
			return toGenaiSchema(p)
		})
	}
	return out
}

package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kovalyov-valentin/autoblog/internal/config"
)

// Generator отправляет промпт модели и возвращает текст ответа.
// Ответ должен быть JSON, подходящий под schema.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *Schema) (string, error)
}

// New создает генератор для провайдера из конфига
func New(ctx context.Context, cfg config.Config, httpClient *http.Client) (Generator, error) {
	if err := cfg.RequireAI(); err != nil {
		return nil, err
	}

	switch cfg.AIProvider {
	case "openai":
		return NewOpenAI(cfg.OpenAIKey, cfg.AIModel,
			WithOpenAIBaseURL(cfg.OpenAIBaseURL),
			WithOpenAIHTTPClient(httpClient),
		), nil
	case "gemini", "":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.AIModel, WithGeminiHTTPClient(httpClient))
	default:
		return nil, fmt.Errorf("%w: unknown AI_PROVIDER %q", config.ErrInvalid, cfg.AIProvider)
	}
}

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kovalyov-valentin/autoblog/internal/upstream"
	"github.com/sashabaranov/go-openai"
)

// OpenAI - запасной провайдер через chat completions в режиме json_object
type OpenAI struct {
	client *openai.Client
	model  string
}

type OpenAIOption func(*openai.ClientConfig)

func WithOpenAIBaseURL(baseURL string) OpenAIOption {
	return func(c *openai.ClientConfig) {
		if baseURL != "" {
			c.BaseURL = baseURL
		}
	}
}

func WithOpenAIHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *openai.ClientConfig) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

func NewOpenAI(apiKey, model string, opts ...OpenAIOption) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	for _, opt := range opts {
		opt(&cfg)
	}

	// Дефолтная модель конфига рассчитана на Gemini
	if model == "" || strings.HasPrefix(model, "gemini") {
		model = openai.GPT4oMini
	}

	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

func (o *OpenAI) Generate(ctx context.Context, prompt string, schema *Schema) (string, error) {
	schemaJSON, err := json.Marshal(schema.JSONSchema())
	if err != nil {
		return "", fmt.Errorf("ai.OpenAI.Generate: marshal schema: %w", err)
	}

	request := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Respond with a single JSON object that matches this JSON schema:\n" + string(schemaJSON),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
		TopP:        1,
	}

	resp, err := o.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("ai.OpenAI.Generate: %w", normalizeOpenAIError(err))
	}

	// Берем первый вариант ответа
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &SchemaError{Reason: "response has no text content"}
	}

	return resp.Choices[0].Message.Content, nil
}

func normalizeOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &upstream.StatusError{Service: "openai", Code: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &upstream.StatusError{Service: "openai", Code: reqErr.HTTPStatusCode, Message: string(reqErr.Body)}
	}

	return err
}

package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatClient produces a completion from a system/user prompt pair with a
// single external call. Responses are requested in JSON mode with the
// configured sampling temperature and output-token bound; failures are
// surfaced, never retried.
type ChatClient struct {
	client      llms.Model
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// NewChatClient creates a completion client for the given endpoint and
// model. An empty baseURL targets the public OpenAI API.
func NewChatClient(baseURL, apiKey, model string, temperature float64, maxTokens int, logger *slog.Logger) (*ChatClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("openai: chat client: %w", err)
	}

	return &ChatClient{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}, nil
}

// Complete sends the two prompts as system/user turns and returns the raw
// response content.
func (c *ChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userPrompt)},
		},
	}

	resp, err := c.client.GenerateContent(ctx, content,
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
		llms.WithJSONMode(),
	)
	if err != nil {
		return "", fmt.Errorf("openai: completion: %w: %v", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: completion: %w: no choices returned", ErrGeneration)
	}

	c.logger.Debug("completion generated", "model", c.model, "chars", len(resp.Choices[0].Content))
	return resp.Choices[0].Content, nil
}

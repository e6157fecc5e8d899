// Package openai provides embedding and completion clients for any
// OpenAI-compatible API, built on langchaingo. The retrieval and
// ingestion pipelines consume them through their own narrow interfaces.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// EmbedClient converts text into a fixed-length vector with a single
// external call. No caching and no truncation: identical text re-embeds
// every call, and over-long input is rejected by the service, not here.
type EmbedClient struct {
	embedder embeddings.Embedder
	model    string
	logger   *slog.Logger
}

// NewEmbedClient creates an embedding client for the given endpoint and
// model. An empty baseURL targets the public OpenAI API.
func NewEmbedClient(baseURL, apiKey, model string, logger *slog.Logger) (*EmbedClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("openai: embed client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("openai: embed client: %w", err)
	}

	return &EmbedClient{embedder: embedder, model: model, logger: logger}, nil
}

// Embed returns the embedding vector for text.
func (c *EmbedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("openai: embed: %w", ErrEmptyInput)
	}

	vectors, err := c.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("openai: embed: %w: %v", ErrEmbedding, err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("openai: embed: %w: no vector returned", ErrEmbedding)
	}

	c.logger.Debug("embedding generated", "model", c.model, "dims", len(vectors[0]))
	return vectors[0], nil
}

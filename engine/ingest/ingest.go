// Package ingest adds question/answer pairs to the vector store: one at a
// time, in bulk from a dataset file, or from a NATS subject.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/faqrag/faqrag/engine/domain"
	"github.com/faqrag/faqrag/engine/semantic"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Upserter writes records to the vector store.
type Upserter interface {
	Upsert(ctx context.Context, rec semantic.VectorRecord) error
}

// Service orchestrates pair ingestion.
type Service struct {
	embed  Embedder
	store  Upserter
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates an ingestion service. A nil logger falls back to slog.Default.
func New(embed Embedder, store Upserter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		embed:  embed,
		store:  store,
		logger: logger,
		tracer: otel.Tracer("engine/ingest"),
	}
}

// AddPair validates one pair, embeds its combined question and answer text,
// and stores it under a fresh random id. The id is returned on success.
func (s *Service) AddPair(ctx context.Context, keyword, question, answer string) (string, error) {
	if err := domain.ValidateQAInput(keyword, question, answer); err != nil {
		return "", err
	}

	ctx, span := s.tracer.Start(ctx, "ingest.add_pair")
	defer span.End()

	vector, err := s.embed.Embed(ctx, domain.EmbedText(question, answer))
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("ingest: embed pair: %w", err)
	}

	id := uuid.NewString()
	rec := semantic.VectorRecord{
		ID:        id,
		Embedding: vector,
		Payload: semantic.Payload{
			Keyword:  keyword,
			Question: question,
			Answer:   answer,
		},
	}
	if err := s.store.Upsert(ctx, rec); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("ingest: store pair: %w", err)
	}

	s.logger.Info("pair stored", "id", id, "keyword", keyword)
	return id, nil
}

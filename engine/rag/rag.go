// Package rag orchestrates the retrieval pipeline: it embeds the user's
// question, searches the QA collection for similar pairs, and hands the
// hits to the answer synthesizer. Synthesis always runs, even when the
// search comes back empty.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/faqrag/faqrag/engine/domain"
	"github.com/faqrag/faqrag/engine/semantic"
)

// Embedder abstracts the embedding service.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher abstracts vector similarity search.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, limit int, scoreThreshold float32) ([]semantic.SearchResult, error)
}

// Synthesizer abstracts answer synthesis from retrieved evidence.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, hits []domain.SearchHit, priorContext, currentContext string) (string, error)
}

// Options configures the retrieval pipeline.
type Options struct {
	SearchLimit    int
	ScoreThreshold float32
}

// Service is the retrieval orchestrator.
type Service struct {
	embed  Embedder
	search Searcher
	synth  Synthesizer
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a retrieval Service.
func New(embed Embedder, search Searcher, synth Synthesizer, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		embed:  embed,
		search: search,
		synth:  synth,
		opts:   opts,
		logger: logger,
		tracer: otel.Tracer("engine/rag"),
	}
}

// Answer runs the full pipeline for one query. External calls run
// sequentially; any failure aborts the request and propagates to the
// caller untranslated.
func (s *Service) Answer(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error) {
	if err := domain.ValidateQuery(req); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "rag.answer")
	defer span.End()

	start := time.Now()
	s.logger.Info("query start", "query_len", len(req.Query))

	vector, err := s.embed.Embed(ctx, req.Query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rag: embed query: %w", err)
	}

	results, err := s.search.Search(ctx, vector, s.opts.SearchLimit, s.opts.ScoreThreshold)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rag: search: %w", err)
	}
	s.logger.Info("search done", "hits", len(results))

	hits := make([]domain.SearchHit, len(results))
	for i, r := range results {
		hits[i] = domain.SearchHit{
			QAPair: domain.QAPair{
				ID:       r.ID,
				Keyword:  r.Payload.Keyword,
				Question: r.Payload.Question,
				Answer:   r.Payload.Answer,
			},
			Score: r.Score,
		}
	}

	generated, err := s.synth.Synthesize(ctx, req.Query, hits, req.PriorContext, req.CurrentContext)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rag: synthesize: %w", err)
	}

	elapsed := time.Since(start).Seconds() * 1000
	span.SetAttributes(attribute.Int("rag.hits", len(hits)))
	s.logger.Info("query answered", "hits", len(hits), "elapsed_ms", elapsed)

	return &domain.QueryResult{
		Hits:            hits,
		GeneratedAnswer: generated,
		ElapsedMillis:   elapsed,
	}, nil
}

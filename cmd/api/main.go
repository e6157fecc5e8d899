// Package main implements the faqrag API server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faqrag/faqrag/engine/answer"
	"github.com/faqrag/faqrag/engine/domain"
	"github.com/faqrag/faqrag/engine/ingest"
	"github.com/faqrag/faqrag/engine/rag"
	"github.com/faqrag/faqrag/engine/semantic"
	"github.com/faqrag/faqrag/pkg/config"
	"github.com/faqrag/faqrag/pkg/metrics"
	"github.com/faqrag/faqrag/pkg/mid"
	"github.com/faqrag/faqrag/pkg/openai"
)

var met = metrics.New()

// API metrics
var (
	mQueries     = met.Counter("faqrag_queries_total", "Total query requests")
	mQueryErrors = met.Counter("faqrag_queries_failed_total", "Query requests that failed")
	mAdds        = met.Counter("faqrag_adds_total", "Total add requests")
	mAddErrors   = met.Counter("faqrag_adds_failed_total", "Add requests that failed")
	mQueryDur    = met.Histogram("faqrag_query_duration_seconds", "End-to-end query handler time", nil)
	mInflight    = met.Gauge("faqrag_requests_inflight", "Requests currently being served")
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connect to Qdrant ---
	store, err := semantic.New(cfg.QdrantAddr(), cfg.QdrantCollection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx, cfg.QdrantVectorSize); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	logger.Info("vector store ready", "collection", cfg.QdrantCollection, "dims", cfg.QdrantVectorSize)

	// --- OpenAI clients ---
	embedder, err := openai.NewEmbedClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIEmbeddingModel, logger)
	if err != nil {
		return fmt.Errorf("embed client: %w", err)
	}
	chat, err := openai.NewChatClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAICompletionModel,
		cfg.GenerationTemperature, cfg.GenerationMaxTokens, logger)
	if err != nil {
		return fmt.Errorf("chat client: %w", err)
	}

	// --- Build services ---
	prompts := answer.NewPromptStore(cfg.PromptsDir)
	synth := answer.New(chat, prompts, answer.Options{}, logger)

	ragSvc := rag.New(embedder, store, synth, rag.Options{
		SearchLimit:    cfg.QdrantSearchLimit,
		ScoreThreshold: cfg.QdrantScoreThreshold,
	}, logger)

	ingestSvc := ingest.New(embedder, store, logger)

	// --- HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /api/v1/query", handleQuery(ragSvc, logger))
	mux.HandleFunc("POST /api/v1/add", handleAdd(ingestSvc, logger))
	mux.Handle("GET /metrics", met.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.OTel(config.ServiceName),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.HTTPPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// --- Handlers ---

type querier interface {
	Answer(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error)
}

type pairAdder interface {
	AddPair(ctx context.Context, keyword, question, answer string) (string, error)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": config.ServiceName,
		"version": config.Version,
	})
}

func handleQuery(svc querier, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mInflight.Inc()
		defer mInflight.Dec()
		mQueries.Inc()
		start := time.Now()
		defer func() { mQueryDur.Since(start) }()

		var req domain.QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			mQueryErrors.Inc()
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}

		res, err := svc.Answer(r.Context(), req)
		if err != nil {
			mQueryErrors.Inc()
			logger.Error("query failed", "error", err)
			writeError(w, statusFor(err), "query failed", err)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// addResponse mirrors the stored pair back to the caller.
type addResponse struct {
	ID      string        `json:"id"`
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Item    domain.QAPair `json:"item"`
}

func handleAdd(svc pairAdder, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mInflight.Inc()
		defer mInflight.Dec()
		mAdds.Inc()

		var in ingest.PairInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			mAddErrors.Inc()
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}

		id, err := svc.AddPair(r.Context(), in.Keyword, in.Question, in.Answer)
		if err != nil {
			mAddErrors.Inc()
			logger.Error("add failed", "error", err)
			writeError(w, statusFor(err), "add failed", err)
			return
		}

		writeJSON(w, http.StatusCreated, addResponse{
			ID:      id,
			Status:  "success",
			Message: "qa pair stored",
			Item: domain.QAPair{
				ID:       id,
				Keyword:  in.Keyword,
				Question: in.Question,
				Answer:   in.Answer,
			},
		})
	}
}

// statusFor maps service errors to HTTP status codes. Invalid input is the
// caller's fault; failures of the backing services surface as bad gateway.
func statusFor(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, openai.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, semantic.ErrUnavailable),
		errors.Is(err, semantic.ErrConfig),
		errors.Is(err, semantic.ErrWrite),
		errors.Is(err, semantic.ErrRead),
		errors.Is(err, openai.ErrEmbedding),
		errors.Is(err, openai.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := errorResponse{Status: "error", Code: status, Message: msg}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Command consumer subscribes to a NATS subject and stores incoming
// question/answer pairs in the vector store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/faqrag/faqrag/engine/ingest"
	"github.com/faqrag/faqrag/engine/semantic"
	"github.com/faqrag/faqrag/pkg/config"
	"github.com/faqrag/faqrag/pkg/metrics"
	"github.com/faqrag/faqrag/pkg/openai"
)

var met = metrics.New()

var (
	mDelivered  = met.Gauge("faqrag_consumer_delivered", "Messages delivered to the subscription")
	mDropped    = met.Gauge("faqrag_consumer_dropped", "Messages dropped by the subscription")
	mReconnects = met.Gauge("faqrag_consumer_reconnects", "NATS connection reconnects")
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	met.ServeAsync(9091, logger)

	store, err := semantic.New(cfg.QdrantAddr(), cfg.QdrantCollection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx, cfg.QdrantVectorSize); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	logger.Info("vector store ready", "collection", cfg.QdrantCollection)

	embedder, err := openai.NewEmbedClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIEmbeddingModel, logger)
	if err != nil {
		return fmt.Errorf("embed client: %w", err)
	}

	nc, err := nats.Connect(cfg.NATSURL, nats.Name(config.ServiceName+"-consumer"))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	svc := ingest.New(embedder, store, logger)
	sub, err := svc.StartConsumer(nc, cfg.IngestSubject)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	logger.Info("consumer started", "subject", sub.Subject, "nats_url", cfg.NATSURL)

	go pollStats(ctx, nc, sub)

	<-ctx.Done()
	logger.Info("shutting down")
	if err := nc.Drain(); err != nil {
		return fmt.Errorf("nats drain: %w", err)
	}
	return nil
}

// pollStats mirrors NATS client counters into the metrics registry.
func pollStats(ctx context.Context, nc *nats.Conn, sub *nats.Subscription) {
	tick := time.NewTicker(15 * time.Second)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if n, err := sub.Delivered(); err == nil {
				mDelivered.Set(n)
			}
			if n, err := sub.Dropped(); err == nil {
				mDropped.Set(int64(n))
			}
			mReconnects.Set(int64(nc.Stats().Reconnects))
		}
	}
}

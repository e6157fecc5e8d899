// Command loader bulk-loads a JSON dataset of question/answer pairs into
// the vector store.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/faqrag/faqrag/engine/ingest"
	"github.com/faqrag/faqrag/engine/semantic"
	"github.com/faqrag/faqrag/pkg/config"
	"github.com/faqrag/faqrag/pkg/openai"
)

func main() {
	app := &cli.App{
		Name:  "loader",
		Usage: "Bulk-load question/answer pairs from a JSON dataset into the vector store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the JSON dataset",
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Pause between records (overrides LOADER_DELAY_MS)",
				Value: ingest.DefaultLoadDelay,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Action: loadCommand,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadCommand(c *cli.Context) error {
	ctx := c.Context

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := semantic.New(cfg.QdrantAddr(), cfg.QdrantCollection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx, cfg.QdrantVectorSize); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	embedder, err := openai.NewEmbedClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIEmbeddingModel, slog.Default())
	if err != nil {
		return fmt.Errorf("embed client: %w", err)
	}

	delay := cfg.LoaderDelay()
	if c.IsSet("delay") {
		delay = c.Duration("delay")
	}

	slog.Info("loading dataset",
		"file", c.String("file"),
		"collection", cfg.QdrantCollection,
		"delay", delay,
	)

	svc := ingest.New(embedder, store, slog.Default())
	summary, err := svc.LoadDataset(ctx, c.String("file"), delay)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d records failed", summary.Failed, summary.Total)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

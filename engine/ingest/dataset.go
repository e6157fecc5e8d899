package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// DefaultLoadDelay paces dataset records so bulk loads stay inside the
// embedding provider's rate limits.
const DefaultLoadDelay = 500 * time.Millisecond

// LoadDataset reads a JSON array of pairs from path and ingests them one at
// a time, pacing records by delay. A record that fails validation,
// embedding, or storage is counted and logged; the load keeps going. Only
// an unreadable or unparseable file aborts the run.
func (s *Service) LoadDataset(ctx context.Context, path string, delay time.Duration) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("ingest: read dataset: %w", err)
	}

	var records []PairInput
	if err := json.Unmarshal(data, &records); err != nil {
		return Summary{}, fmt.Errorf("ingest: parse dataset: %w", err)
	}

	limiter := rate.NewLimiter(rate.Every(delay), 1)

	summary := Summary{Total: len(records)}
	for i, rec := range records {
		if err := limiter.Wait(ctx); err != nil {
			return summary, fmt.Errorf("ingest: dataset interrupted: %w", err)
		}

		id, err := s.AddPair(ctx, rec.Keyword, rec.Question, rec.Answer)
		if err != nil {
			summary.Failed++
			s.logger.Error("dataset record failed", "index", i, "keyword", rec.Keyword, "error", err)
			continue
		}
		summary.Succeeded++
		s.logger.Info("dataset record stored", "index", i, "id", id)
	}

	s.logger.Info("dataset load done",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	return summary, nil
}

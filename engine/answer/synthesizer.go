// Package answer builds the prompt pair from retrieved evidence and
// synthesizes the final answer through a JSON-constrained completion.
package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/faqrag/faqrag/engine/domain"
)

// Generator abstracts the completion service.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Options configures synthesis.
type Options struct {
	// ExtraInstructions is appended into the system template. Usually empty.
	ExtraInstructions string
}

// Synthesizer renders the system/user prompt pair and extracts the final
// answer from the model's structured reply.
type Synthesizer struct {
	gen    Generator
	store  *PromptStore
	opts   Options
	logger *slog.Logger
}

// New creates a Synthesizer.
func New(gen Generator, store *PromptStore, opts Options, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{gen: gen, store: store, opts: opts, logger: logger}
}

// EvidenceItem is one numbered entry of the evidence list rendered into
// the user prompt, in store-returned order.
type EvidenceItem struct {
	Number   int
	Question string
	Answer   string
}

// modelReply is the JSON shape the model is instructed to return. Answer
// is a pointer so a missing key is distinguishable from an empty string.
type modelReply struct {
	CanAnswer bool    `json:"can_answer"`
	Answer    *string `json:"answer"`
}

// Synthesize produces the answer text for a query given its retrieved
// hits and conversational context. It always runs, even with zero hits;
// the model is expected to report insufficient evidence itself.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, hits []domain.SearchHit, priorContext, currentContext string) (string, error) {
	evidence := make([]EvidenceItem, len(hits))
	for i, h := range hits {
		evidence[i] = EvidenceItem{Number: i + 1, Question: h.Question, Answer: h.Answer}
	}

	userPrompt, err := s.store.Render(userTemplate, map[string]any{
		"query":           query,
		"evidence":        evidence,
		"prior_context":   priorContext,
		"current_context": currentContext,
	})
	if err != nil {
		return "", err
	}

	systemPrompt, err := s.store.Render(systemTemplate, map[string]any{
		"extra_instructions": s.opts.ExtraInstructions,
	})
	if err != nil {
		return "", err
	}

	raw, err := s.gen.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("answer: generate: %w", err)
	}

	reply, ok := parseReply(raw)
	if !ok {
		// The model ignored the JSON contract; the raw text is still the
		// best available answer.
		s.logger.Warn("reply is not the expected JSON shape, returning raw text", "chars", len(raw))
		return strings.TrimSpace(raw), nil
	}

	if !reply.CanAnswer {
		// Informational only: the text is returned anyway and is expected
		// to be an insufficient-information message.
		s.logger.Info("model flagged insufficient evidence", "hits", len(hits))
	}
	return *reply.Answer, nil
}

// parseReply extracts the structured reply, tolerating markdown fences.
func parseReply(raw string) (modelReply, bool) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var reply modelReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return modelReply{}, false
	}
	if reply.Answer == nil {
		return modelReply{}, false
	}
	return reply, true
}

package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/faqrag/faqrag/engine/domain"
	"github.com/faqrag/faqrag/engine/semantic"
	"go.opentelemetry.io/otel"
)

// --- mocks ---

type mockEmbedder struct {
	vec      []float32
	err      error
	calls    int
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	m.lastText = text
	return m.vec, m.err
}

type mockSearcher struct {
	results       []semantic.SearchResult
	err           error
	lastVector    []float32
	lastLimit     int
	lastThreshold float32
}

func (m *mockSearcher) Search(_ context.Context, embedding []float32, limit int, threshold float32) ([]semantic.SearchResult, error) {
	m.lastVector = embedding
	m.lastLimit = limit
	m.lastThreshold = threshold
	return m.results, m.err
}

type mockSynth struct {
	text     string
	err      error
	calls    int
	lastHits []domain.SearchHit
}

func (m *mockSynth) Synthesize(_ context.Context, _ string, hits []domain.SearchHit, _, _ string) (string, error) {
	m.calls++
	m.lastHits = hits
	return m.text, m.err
}

func newService(embed *mockEmbedder, search *mockSearcher, synth *mockSynth) *Service {
	return &Service{
		embed:  embed,
		search: search,
		synth:  synth,
		opts:   Options{SearchLimit: 3, ScoreThreshold: 0.65},
		logger: slog.Default(),
		tracer: otel.Tracer("test"),
	}
}

// --- tests ---

func TestAnswer_Success(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	search := &mockSearcher{
		results: []semantic.SearchResult{
			{ID: "p1", Score: 0.92, Payload: semantic.Payload{Keyword: "plans", Question: "What is Full?", Answer: "The premium plan."}},
			{ID: "p2", Score: 0.80, Payload: semantic.Payload{Keyword: "plans", Question: "What is Basic?", Answer: "The entry plan."}},
		},
	}
	synth := &mockSynth{text: "Full includes everything; Basic is cheaper."}
	svc := newService(embed, search, synth)

	res, err := svc.Answer(context.Background(), domain.QueryRequest{Query: "difference between Full and Basic?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.GeneratedAnswer != "Full includes everything; Basic is cheaper." {
		t.Errorf("unexpected answer: %s", res.GeneratedAnswer)
	}
	if len(res.Hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(res.Hits))
	}
	if res.Hits[0].ID != "p1" || res.Hits[0].Score != 0.92 {
		t.Error("wrong first hit")
	}
	if res.Hits[0].Question != "What is Full?" || res.Hits[0].Answer != "The premium plan." {
		t.Error("payload not mapped onto hit")
	}
	if res.ElapsedMillis < 0 {
		t.Error("elapsed must be non-negative")
	}

	if embed.lastText != "difference between Full and Basic?" {
		t.Errorf("embedder got %q", embed.lastText)
	}
	if search.lastLimit != 3 || search.lastThreshold != 0.65 {
		t.Errorf("search options not forwarded: limit=%d threshold=%v", search.lastLimit, search.lastThreshold)
	}
}

func TestAnswer_EmptyHitsStillSynthesizes(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1}}
	search := &mockSearcher{results: nil}
	synth := &mockSynth{text: "I do not have enough information."}
	svc := newService(embed, search, synth)

	res, err := svc.Answer(context.Background(), domain.QueryRequest{Query: "something unknown"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if synth.calls != 1 {
		t.Fatalf("synthesizer must run on empty hits, calls=%d", synth.calls)
	}
	if len(synth.lastHits) != 0 {
		t.Errorf("expected empty hits, got %d", len(synth.lastHits))
	}
	if res.GeneratedAnswer == "" {
		t.Error("answer must still be produced")
	}
}

func TestAnswer_EmptyQuery(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := newService(embed, &mockSearcher{}, &mockSynth{})

	_, err := svc.Answer(context.Background(), domain.QueryRequest{Query: "   "})
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if embed.calls != 0 {
		t.Error("validation must precede the embedding call")
	}
}

func TestAnswer_EmbedError(t *testing.T) {
	svc := newService(&mockEmbedder{err: fmt.Errorf("embed down")}, &mockSearcher{}, &mockSynth{})

	_, err := svc.Answer(context.Background(), domain.QueryRequest{Query: "question"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "rag: embed query: embed down" {
		t.Errorf("unexpected error: %s", got)
	}
}

func TestAnswer_SearchError(t *testing.T) {
	boom := errors.New("qdrant timeout")
	svc := newService(&mockEmbedder{vec: []float32{0.1}}, &mockSearcher{err: boom}, &mockSynth{})

	_, err := svc.Answer(context.Background(), domain.QueryRequest{Query: "question"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped search error, got %v", err)
	}
}

func TestAnswer_SynthesizeError(t *testing.T) {
	boom := errors.New("completion failed")
	svc := newService(&mockEmbedder{vec: []float32{0.1}}, &mockSearcher{}, &mockSynth{err: boom})

	_, err := svc.Answer(context.Background(), domain.QueryRequest{Query: "question"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped synthesis error, got %v", err)
	}
}

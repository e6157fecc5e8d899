package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func embedServer(t *testing.T, vector []float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": vector},
			},
			"model": "text-embedding-3-large",
			"usage": map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
}

func TestEmbedClient_Embed(t *testing.T) {
	server := embedServer(t, []float64{0.1, 0.2, 0.3})
	defer server.Close()

	client, err := NewEmbedClient(server.URL, "test-key", "text-embedding-3-large", nil)
	if err != nil {
		t.Fatalf("NewEmbedClient: %v", err)
	}

	vec, err := client.Embed(context.Background(), "what plans do you offer")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("expected 3 dims, got %d", len(vec))
	}
}

func TestEmbedClient_EmptyText(t *testing.T) {
	server := embedServer(t, []float64{0.1})
	defer server.Close()

	client, err := NewEmbedClient(server.URL, "test-key", "m", nil)
	if err != nil {
		t.Fatalf("NewEmbedClient: %v", err)
	}

	_, err = client.Embed(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestEmbedClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewEmbedClient(server.URL, "test-key", "m", nil)
	if err != nil {
		t.Fatalf("NewEmbedClient: %v", err)
	}

	_, err = client.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestNewEmbedClient_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewEmbedClient("", "", "m", nil); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

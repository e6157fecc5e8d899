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

func chatServer(t *testing.T, content string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]int{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
		})
	}))
}

func TestChatClient_Complete(t *testing.T) {
	var req map[string]any
	server := chatServer(t, `{"can_answer": true, "answer": "Full has more features."}`, &req)
	defer server.Close()

	client, err := NewChatClient(server.URL, "test-key", "gpt-4o-mini", 0.7, 800, nil)
	if err != nil {
		t.Fatalf("NewChatClient: %v", err)
	}

	out, err := client.Complete(context.Background(), "you are helpful", "what is Full?")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.Contains(out, "Full has more features.") {
		t.Errorf("unexpected content: %s", out)
	}

	if req["temperature"] != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", req["temperature"])
	}
	if req["max_tokens"] != float64(800) {
		t.Errorf("expected max_tokens 800, got %v", req["max_tokens"])
	}
	rf, _ := req["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("expected json_object response format, got %v", req["response_format"])
	}
	msgs, _ := req["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system+user turns, got %d", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" {
		t.Errorf("expected first turn to be system, got %v", first["role"])
	}
}

func TestChatClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewChatClient(server.URL, "test-key", "m", 0.7, 800, nil)
	if err != nil {
		t.Fatalf("NewChatClient: %v", err)
	}

	_, err = client.Complete(context.Background(), "sys", "user")
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestChatClient_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-1", "object": "chat.completion", "choices": []any{},
		})
	}))
	defer server.Close()

	client, err := NewChatClient(server.URL, "test-key", "m", 0.7, 800, nil)
	if err != nil {
		t.Fatalf("NewChatClient: %v", err)
	}

	_, err = client.Complete(context.Background(), "sys", "user")
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestNewChatClient_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewChatClient("", "", "m", 0.7, 800, nil); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var hi = []Message{{Role: "user", Content: "hi"}}

func TestOllamaGenerateMapsRequestAndUsage(t *testing.T) {
	var got ollamaChatRequest
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":           map[string]any{"role": "assistant", "content": `{"ok":true}`},
			"prompt_eval_count": 12,
			"eval_count":        5,
		})
	}))
	defer srv.Close()

	messages := []Message{
		{Role: "system", Content: "Return JSON only"},
		{Role: "user", Content: "Draft report"},
		{Role: "assistant", Content: "{}"},
		{Role: "user", Content: "Improve it"},
	}
	c := NewOllamaClient(srv.URL, 2*time.Second, 1, 0, 0)
	resp, err := c.Generate(context.Background(), GenerateRequest{Model: "llama3:latest", Messages: messages, MaxTokens: 64, Temperature: 0.2, JSON: true})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Text() != `{"ok":true}` {
		t.Fatalf("unexpected text: %q", resp.Text())
	}
	if resp.Usage != (Usage{PromptTokens: 12, CompletionTokens: 5, TotalTokens: 17}) {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if resp.RequestID == "" {
		t.Fatalf("expected simulated request id")
	}

	want := ollamaChatRequest{
		Model:    "llama3:latest",
		Messages: []ollamaChatMessage{{"system", "Return JSON only"}, {"user", "Draft report"}, {"assistant", "{}"}, {"user", "Improve it"}},
		Format:   "json",
		Options:  map[string]any{"temperature": 0.2, "num_predict": float64(64)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestOllamaStatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     any
		attempts int32
		check    func(error) bool
	}{
		{"bad request", http.StatusBadRequest, map[string]any{"error": "bad request"}, 1, func(err error) bool {
			var e *BadRequestError
			return errors.As(err, &e) && e.Message == "bad request"
		}},
		{"not pulled", http.StatusNotFound, map[string]any{"error": "model 'nope' not found"}, 1, func(err error) bool {
			var e *ModelNotFoundError
			return errors.As(err, &e)
		}},
		{"server", http.StatusInternalServerError, map[string]any{"error": "oom"}, 3, func(err error) bool {
			var e *ServerError
			return errors.As(err, &e) && e.StatusCode == 500
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(tc.body)
			}))
			defer srv.Close()
			c := NewOllamaClient(srv.URL, 2*time.Second, 3, time.Millisecond, 2*time.Millisecond)
			_, err := c.Generate(context.Background(), GenerateRequest{Model: "nope", Messages: hi})
			if !tc.check(err) {
				t.Fatalf("unexpected error %T: %v", err, err)
			}
			if got := atomic.LoadInt32(&calls); got != tc.attempts {
				t.Fatalf("expected %d attempts, got %d", tc.attempts, got)
			}
		})
	}
}

func TestOllamaUnreachable(t *testing.T) {
	srv := newIPv4Server(t, http.NotFoundHandler())
	host := srv.URL
	srv.Close()
	c := NewOllamaClient(host, time.Second, 1, 0, 0)
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "llama3:latest", Messages: hi})
	var ue *UnreachableError
	if !errors.As(err, &ue) || ue.Host != host {
		t.Fatalf("expected UnreachableError for %s, got %T: %v", host, err, err)
	}
}

func TestOllamaRejectsIncompleteRequest(t *testing.T) {
	c := NewOllamaClient("http://localhost:11434", time.Second, 1, 0, 0)
	if _, err := c.Generate(context.Background(), GenerateRequest{Model: "llama3:latest"}); err == nil || err.Error() != "messages cannot be empty" {
		t.Fatalf("expected 'messages cannot be empty', got: %v", err)
	}
	if _, err := c.Generate(context.Background(), GenerateRequest{Messages: hi}); err == nil || err.Error() != "model cannot be empty" {
		t.Fatalf("expected 'model cannot be empty', got: %v", err)
	}
}

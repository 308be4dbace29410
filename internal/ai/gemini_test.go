package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestToGeminiContentsSplitsSystem(t *testing.T) {
	contents, system := toGeminiContents([]Message{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	})
	if system == nil || len(system.Parts) != 1 || system.Parts[0].Text != "be terse" {
		t.Fatalf("unexpected system instruction: %+v", system)
	}
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[0].Role != genai.RoleUser || contents[1].Role != genai.RoleModel {
		t.Fatalf("unexpected roles: %s, %s", contents[0].Role, contents[1].Role)
	}
}

func TestGeminiRequiresKeyAndMessages(t *testing.T) {
	_, err := NewGeminiClient("").Generate(context.Background(), GenerateRequest{Model: "gemini-2.0-flash"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	_, err = NewGeminiClient("k").Generate(context.Background(), GenerateRequest{Model: "gemini-2.0-flash", Messages: []Message{{Role: "system", Content: "x"}}})
	if err == nil || err.Error() != "messages cannot be empty" {
		t.Fatalf("expected empty messages error, got %v", err)
	}
}

func TestClassifyGeminiError(t *testing.T) {
	err := classifyGeminiError(fmt.Errorf("wrapped: %w", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "slow down"}))
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitError, got %T: %v", err, err)
	}
	if rl.Code != "RESOURCE_EXHAUSTED" {
		t.Fatalf("expected status carried as code, got %q", rl.Code)
	}

	err = classifyGeminiError(genai.APIError{Code: 403, Message: "denied"})
	var auth *AuthError
	if !errors.As(err, &auth) {
		t.Fatalf("expected AuthError, got %T", err)
	}

	plain := errors.New("dial tcp: refused")
	if err := classifyGeminiError(plain); !errors.Is(err, plain) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestRegistryProviders(t *testing.T) {
	got := Providers()
	want := []string{ProviderGemini, ProviderOllama, ProviderOpenRouter}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("providers = %v, want %v", got, want)
	}
	for _, p := range want {
		if _, ok := GetRuntime(p, RuntimeConfig{APIKey: "k"}); !ok {
			t.Fatalf("runtime %s not registered", p)
		}
		if DefaultModel(p) == "" {
			t.Fatalf("no default model for %s", p)
		}
	}
	if _, ok := GetRuntime("nope", RuntimeConfig{}); ok {
		t.Fatalf("unexpected runtime for unknown provider")
	}
}

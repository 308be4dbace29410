package ai

import (
	"maps"
	"slices"
	"time"
)

// RuntimeConfig is the provider-neutral input to a RuntimeFactory. Each
// factory reads only the fields its provider needs.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	APIKey string // openrouter, gemini
	Host   string // ollama
}

type RuntimeFactory func(RuntimeConfig) Runtime

var registry = map[string]RuntimeFactory{
	ProviderOpenRouter: func(c RuntimeConfig) Runtime {
		return NewClient(c.APIKey, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay)
	},
	ProviderOllama: func(c RuntimeConfig) Runtime {
		return NewOllamaClient(c.Host, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay)
	},
	ProviderGemini: func(c RuntimeConfig) Runtime { return NewGeminiClient(c.APIKey) },
}

// GetRuntime builds the named provider's runtime. ok is false for unknown names.
func GetRuntime(name string, cfg RuntimeConfig) (Runtime, bool) {
	f, ok := registry[name]
	if !ok {
		return nil, false
	}
	return f(cfg), true
}

func Providers() []string {
	return slices.Sorted(maps.Keys(registry))
}

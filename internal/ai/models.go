package ai

// Model metadata used to pick defaults and to keep augmentation prompts
// inside a model's context window.

type ModelInfo struct {
	Name          string
	ContextTokens int // approximate context window
}

var models = map[string]ModelInfo{
	"openai/gpt-4o-mini":               {Name: "openai/gpt-4o-mini", ContextTokens: 128000},
	"openai/gpt-4o":                    {Name: "openai/gpt-4o", ContextTokens: 128000},
	"anthropic/claude-3.5-sonnet":      {Name: "anthropic/claude-3.5-sonnet", ContextTokens: 200000},
	"google/gemini-1.5-pro":            {Name: "google/gemini-1.5-pro", ContextTokens: 1000000},
	"meta-llama/llama-3.1-8b-instruct": {Name: "meta-llama/llama-3.1-8b-instruct", ContextTokens: 131072},
	"gemini-2.0-flash":                 {Name: "gemini-2.0-flash", ContextTokens: 1048576},
	"gemini-1.5-flash":                 {Name: "gemini-1.5-flash", ContextTokens: 1048576},
	// Common local (Ollama) tags
	"llama3:latest":         {Name: "llama3:latest", ContextTokens: 8192},
	"llama3.1:8b-instruct":  {Name: "llama3.1:8b-instruct", ContextTokens: 8192},
	"mistral:7b-instruct":   {Name: "mistral:7b-instruct", ContextTokens: 8192},
	"phi3:mini-4k-instruct": {Name: "phi3:mini-4k-instruct", ContextTokens: 4096},
}

var defaultModels = map[string]string{
	ProviderOpenRouter: "openai/gpt-4o-mini",
	ProviderOllama:     "llama3:latest",
	ProviderGemini:     "gemini-2.0-flash",
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// DefaultModel returns the model used for a provider when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

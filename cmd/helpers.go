package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/agentops-cli/internal/ai"
	"github.com/KaramelBytes/agentops-cli/internal/augment"
	cfgpkg "github.com/KaramelBytes/agentops-cli/internal/config"
	"github.com/KaramelBytes/agentops-cli/internal/orchestrator"
	"github.com/KaramelBytes/agentops-cli/internal/parser"
	"github.com/KaramelBytes/agentops-cli/internal/policy"
	"github.com/KaramelBytes/agentops-cli/internal/report"
	"github.com/KaramelBytes/agentops-cli/internal/utils"
)

// Constraint strings produced by the quick-pick flags.
const (
	constraintBudget = "Budget limit"
	noDataWarning    = "Analyze Data was selected without a dataset; the request will be handled as ops diagnosis."
)

var complianceConstraints = map[string]string{
	"hipaa": "Compliance: HIPAA",
	"pci":   "Compliance: PCI",
	"gdpr":  "Compliance: GDPR",
}

// requestSpec is one request as written in a batch file or assembled from
// run flags. File paths are resolved against a base directory.
type requestSpec struct {
	Name        string   `yaml:"name"`
	Industry    string   `yaml:"industry"`
	Objective   string   `yaml:"objective"`
	Problem     string   `yaml:"problem"`
	Constraints []string `yaml:"constraints"`
	BudgetLimit bool     `yaml:"budget_limit"`
	Compliance  []string `yaml:"compliance"`
	Explain     *bool    `yaml:"explain"`
	Stakeholder string   `yaml:"stakeholder"`
	Confidence  string   `yaml:"confidence"`
	Data        string   `yaml:"data"`
	SOP         string   `yaml:"sop"`
	Metrics     string   `yaml:"metrics"`
}

// runOutput is what run and run-batch print or write per request.
type runOutput struct {
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	RunID   string         `json:"run_id" yaml:"run_id"`
	Refusal string         `json:"refusal,omitempty" yaml:"refusal,omitempty"`
	Report  *report.Report `json:"report,omitempty" yaml:"report,omitempty"`
	Trace   report.Trace   `json:"trace" yaml:"trace"`
}

func newRunOutput(name string, res *orchestrator.Result) runOutput {
	return runOutput{Name: name, RunID: res.RunID, Refusal: res.Refusal, Report: res.Report, Trace: res.Trace}
}

// expandConstraints turns quick-pick flags into the constraint strings the
// policy layer understands, followed by any free-form constraints.
func expandConstraints(budget bool, compliance []string, extra []string) ([]string, error) {
	var out []string
	if budget {
		out = append(out, constraintBudget)
	}
	for _, c := range compliance {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" {
			continue
		}
		s, ok := complianceConstraints[key]
		if !ok {
			return nil, fmt.Errorf("invalid compliance regime: %s (use hipaa, pci or gdpr)", c)
		}
		out = append(out, s)
	}
	for _, c := range extra {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

func resolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

// buildRequest validates a request and loads its payloads. Warnings are
// human-facing notes that do not stop the run.
func buildRequest(spec requestSpec, baseDir string, c *cfgpkg.Global) (orchestrator.Request, []string, error) {
	var warnings []string
	problem := strings.TrimSpace(spec.Problem)
	if problem == "" {
		return orchestrator.Request{}, nil, errors.New("problem statement is required")
	}
	if strings.TrimSpace(spec.Objective) == "" {
		return orchestrator.Request{}, nil, fmt.Errorf("objective is required (one of: %s)", objectiveChoices())
	}
	objective, err := orchestrator.ParseObjective(spec.Objective)
	if err != nil {
		return orchestrator.Request{}, nil, err
	}
	constraints, err := expandConstraints(spec.BudgetLimit, spec.Compliance, spec.Constraints)
	if err != nil {
		return orchestrator.Request{}, nil, err
	}

	req := orchestrator.Request{
		Industry:    firstNonEmpty(spec.Industry, c.Industry),
		Objective:   objective,
		Problem:     problem,
		Constraints: constraints,
		Explain:     c.ExplainMode,
	}
	if spec.Explain != nil {
		req.Explain = *spec.Explain
	}
	req.Stakeholder = policy.ParseStakeholder(firstNonEmpty(spec.Stakeholder, c.StakeholderMode))
	req.Confidence = policy.ParseConfidence(firstNonEmpty(spec.Confidence, c.ConfidenceMode))

	if spec.Data != "" {
		ds, err := parser.LoadTabularFile(resolvePath(baseDir, spec.Data))
		if err != nil {
			return orchestrator.Request{}, nil, err
		}
		req.Dataset = ds
	}
	if spec.SOP != "" {
		path := resolvePath(baseDir, spec.SOP)
		b, err := os.ReadFile(path)
		if err != nil {
			return orchestrator.Request{}, nil, fmt.Errorf("read sop: %w", err)
		}
		req.SOP = b
		text, err := parser.ParseDocument(b, path)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("could not extract text from %s: %v", filepath.Base(path), err))
		case !utf8.ValidString(text) || strings.TrimSpace(text) == "":
			warnings = append(warnings, fmt.Sprintf("no readable text in %s; it will only be acknowledged", filepath.Base(path)))
		default:
			req.SOPText = text
		}
	}
	if spec.Metrics != "" {
		b, err := os.ReadFile(resolvePath(baseDir, spec.Metrics))
		if err != nil {
			return orchestrator.Request{}, nil, fmt.Errorf("read metrics: %w", err)
		}
		req.Metrics = b
	}
	if objective == orchestrator.ObjectiveAnalyzeData && req.Dataset == nil {
		warnings = append(warnings, noDataWarning)
	}
	return req, warnings, nil
}

func objectiveChoices() string {
	names := make([]string, 0, len(orchestrator.Objectives))
	for _, o := range orchestrator.Objectives {
		names = append(names, fmt.Sprintf("%q", string(o)))
	}
	return strings.Join(names, ", ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type runtimeOptions struct {
	Provider   string
	OllamaHost string
}

// normalizeProvider maps user spellings onto registered runtime names.
func normalizeProvider(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "", "none", "off":
		return ""
	case "ollama", "local":
		return ai.ProviderOllama
	case "gemini", "google":
		return ai.ProviderGemini
	case "openrouter", "or":
		return ai.ProviderOpenRouter
	default:
		return strings.ToLower(strings.TrimSpace(p))
	}
}

// buildRuntime constructs the AI runtime based on config and flags.
// Returns the runtime and the resolved provider name.
func buildRuntime(c *cfgpkg.Global, opts runtimeOptions) (ai.Runtime, string, error) {
	timeout := 60 * time.Second
	retryMax := 3
	baseDelay := 500 * time.Millisecond
	maxDelay := 4 * time.Second
	if c != nil {
		if c.HTTPTimeoutSec > 0 {
			timeout = time.Duration(c.HTTPTimeoutSec) * time.Second
		}
		if c.RetryMaxAttempts > 0 {
			retryMax = c.RetryMaxAttempts
		}
		if c.RetryBaseDelayMs > 0 {
			baseDelay = time.Duration(c.RetryBaseDelayMs) * time.Millisecond
		}
		if c.RetryMaxDelayMs > 0 {
			maxDelay = time.Duration(c.RetryMaxDelayMs) * time.Millisecond
		}
	}

	provider := normalizeProvider(opts.Provider)
	if provider == "" {
		return nil, "", errors.New("no augmentation provider selected")
	}
	rc := ai.RuntimeConfig{HTTPTimeout: timeout, RetryMax: retryMax, BaseDelay: baseDelay, MaxDelay: maxDelay}
	switch provider {
	case ai.ProviderOllama:
		rc.Host = firstNonEmpty(opts.OllamaHost, os.Getenv("AGENTOPS_OLLAMA_HOST"))
		if rc.Host == "" && c != nil {
			rc.Host = c.OllamaHost
		}
	case ai.ProviderGemini:
		rc.APIKey = firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"))
		if rc.APIKey == "" && c != nil {
			rc.APIKey = c.GeminiAPIKey
		}
		if rc.APIKey == "" {
			return nil, "", fmt.Errorf("GEMINI_API_KEY: %w", ai.ErrMissingAPIKey)
		}
	case ai.ProviderOpenRouter:
		rc.APIKey = os.Getenv("OPENROUTER_API_KEY")
		if rc.APIKey == "" && c != nil {
			rc.APIKey = c.APIKey
		}
		if rc.APIKey == "" {
			return nil, "", fmt.Errorf("OPENROUTER_API_KEY: %w", ai.ErrMissingAPIKey)
		}
	}
	rt, ok := ai.GetRuntime(provider, rc)
	if !ok {
		return nil, "", fmt.Errorf("unknown provider: %s (use one of: %s)", opts.Provider, strings.Join(ai.Providers(), ", "))
	}
	return rt, provider, nil
}

// buildAugmenter returns nil when augmentation is disabled.
func buildAugmenter(c *cfgpkg.Global, providerFlag, modelFlag, ollamaHost string) (augment.Augmenter, error) {
	provider := providerFlag
	if provider == "" && c != nil {
		provider = c.AugmentProvider
	}
	if normalizeProvider(provider) == "" {
		return nil, nil
	}
	rt, resolved, err := buildRuntime(c, runtimeOptions{Provider: provider, OllamaHost: ollamaHost})
	if err != nil {
		return nil, err
	}
	model := modelFlag
	if model == "" && c != nil {
		model = c.AugmentModel
	}
	if model == "" {
		model = ai.DefaultModel(resolved)
	}
	return augment.NewRuntimeAugmenter(rt, model), nil
}

// writeOutput renders v as json (default) or yaml.
func writeOutput(w io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case "", "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("invalid format: %s (use json or yaml)", format)
	}
}

// saveOutput writes v to path in the given format.
func saveOutput(path string, v any, format string) error {
	var sb strings.Builder
	if err := writeOutput(&sb, v, format); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, []byte(sb.String())); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

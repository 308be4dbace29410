// Package augment rewrites a deterministic draft report with a generative
// model. The draft is always the baseline: callers keep it when Augment
// fails.
package augment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/KaramelBytes/agentops-cli/internal/ai"
	"github.com/KaramelBytes/agentops-cli/internal/report"
	"github.com/KaramelBytes/agentops-cli/internal/retrieval"
	"github.com/KaramelBytes/agentops-cli/internal/utils"
)

var (
	// ErrNoJSON is returned when the model reply holds no JSON object.
	ErrNoJSON = errors.New("model response did not contain JSON")
	// ErrPromptTooLarge is returned before calling a model whose context
	// window cannot hold the prompt.
	ErrPromptTooLarge = errors.New("prompt exceeds model context window")
)

// DocumentTokenLimit caps the SOP excerpt included in the prompt. Longer
// documents contribute the sections closest to the problem statement.
const DocumentTokenLimit = 2000

// Draft is the deterministic baseline plus the request context the model sees.
type Draft struct {
	Problem     string
	Industry    string
	Objective   string
	Constraints []string
	Document    string
	Report      report.Report
}

// Augmenter improves a draft report. Implementations must return a report
// that passes report.Validate or an error.
type Augmenter interface {
	Augment(ctx context.Context, d Draft) (report.Report, error)
	Model() string
}

// RuntimeAugmenter drives any ai.Runtime (OpenRouter, Ollama, Gemini).
type RuntimeAugmenter struct {
	rt          ai.Runtime
	model       string
	temperature float64
}

func NewRuntimeAugmenter(rt ai.Runtime, model string) *RuntimeAugmenter {
	return &RuntimeAugmenter{rt: rt, model: model, temperature: 0.2}
}

func (a *RuntimeAugmenter) Model() string { return a.model }

func (a *RuntimeAugmenter) Augment(ctx context.Context, d Draft) (report.Report, error) {
	prompt, err := BuildPrompt(d)
	if err != nil {
		return report.Report{}, err
	}
	if mi, ok := ai.LookupModel(a.model); ok && utils.CountTokens(prompt) > mi.ContextTokens {
		return report.Report{}, fmt.Errorf("%w: ~%d tokens for %s (%d)", ErrPromptTooLarge, utils.CountTokens(prompt), a.model, mi.ContextTokens)
	}
	resp, err := a.rt.Generate(ctx, ai.GenerateRequest{
		Model:       a.model,
		Messages:    []ai.Message{{Role: "user", Content: prompt}},
		Temperature: a.temperature,
		JSON:        true,
	})
	if err != nil {
		return report.Report{}, fmt.Errorf("generate: %w", err)
	}
	return DecodeReport(resp.Text())
}

// BuildPrompt renders the instruction, request context and the draft as JSON.
func BuildPrompt(d Draft) (string, error) {
	draft, err := json.Marshal(d.Report)
	if err != nil {
		return "", fmt.Errorf("marshal draft: %w", err)
	}
	constraints, _ := json.Marshal(orEmpty(d.Constraints))
	var b strings.Builder
	b.WriteString("You are an enterprise strategy and operations AI assistant. ")
	b.WriteString("Return ONLY valid JSON that matches this exact schema keys: ")
	b.WriteString("executive_summary (list of 5 short bullets), problem_understanding{goal,success_metrics,constraints}, ")
	b.WriteString("analysis{key_findings,charts,anomalies}, recommendations{actions,risks,plan_90_days}, assumptions, confidence. ")
	b.WriteString("Do not include markdown or commentary.\n\n")
	fmt.Fprintf(&b, "Industry: %s\n", d.Industry)
	fmt.Fprintf(&b, "Objective Type: %s\n", d.Objective)
	fmt.Fprintf(&b, "Problem: %s\n", d.Problem)
	fmt.Fprintf(&b, "Constraints: %s\n\n", constraints)
	if doc := strings.TrimSpace(d.Document); doc != "" {
		b.WriteString("Process document excerpt:\n")
		b.WriteString(retrieval.Excerpt(d.Problem, doc, DocumentTokenLimit))
		b.WriteString("\n\n")
	}
	b.WriteString("Use this baseline analysis and improve it while keeping claims realistic:\n")
	b.Write(draft)
	return b.String(), nil
}

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// ExtractJSON returns the first fenced ```json block, or else the span from
// the first '{' to the last '}'.
func ExtractJSON(text string) (string, error) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return m[1], nil
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

// DecodeReport extracts, decodes and validates a report from model output.
func DecodeReport(text string) (report.Report, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return report.Report{}, err
	}
	var r report.Report
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return report.Report{}, fmt.Errorf("decode report: %w", err)
	}
	if err := report.Validate(r); err != nil {
		return report.Report{}, err
	}
	return r, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

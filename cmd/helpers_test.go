package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/agentops-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/agentops-cli/internal/config"
	"github.com/KaramelBytes/agentops-cli/internal/memory"
	"github.com/KaramelBytes/agentops-cli/internal/orchestrator"
	"github.com/KaramelBytes/agentops-cli/internal/policy"
)

func testConfig() *cfgpkg.Global {
	return &cfgpkg.Global{
		Industry:         "Manufacturing",
		StakeholderMode:  "CFO",
		ConfidenceMode:   "Balanced",
		HTTPTimeoutSec:   5,
		RetryMaxAttempts: 1,
		RetryBaseDelayMs: 1,
		RetryMaxDelayMs:  2,
		OllamaHost:       "http://127.0.0.1:11434",
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestExpandConstraints(t *testing.T) {
	got, err := expandConstraints(true, []string{"HIPAA", " gdpr ", ""}, []string{"On-prem only", "  "})
	require.NoError(t, err)
	assert.Equal(t, []string{"Budget limit", "Compliance: HIPAA", "Compliance: GDPR", "On-prem only"}, got)

	got, err = expandConstraints(false, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = expandConstraints(false, []string{"sox"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sox")
}

func TestBuildRequestDefaultsFromConfig(t *testing.T) {
	req, warnings, err := buildRequest(requestSpec{Objective: "strategy", Problem: "  Enter the EU market  "}, "", testConfig())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "Enter the EU market", req.Problem)
	assert.Equal(t, "Manufacturing", req.Industry)
	assert.Equal(t, orchestrator.ObjectiveDecideStrategy, req.Objective)
	assert.Equal(t, policy.StakeholderCFO, req.Stakeholder)
	assert.Equal(t, policy.ConfidenceBalanced, req.Confidence)
	assert.False(t, req.Explain)
}

func TestBuildRequestExplainOverride(t *testing.T) {
	c := testConfig()
	c.ExplainMode = true
	req, _, err := buildRequest(requestSpec{Objective: "strategy", Problem: "p"}, "", c)
	require.NoError(t, err)
	assert.True(t, req.Explain)

	off := false
	req, _, err = buildRequest(requestSpec{Objective: "strategy", Problem: "p", Explain: &off}, "", c)
	require.NoError(t, err)
	assert.False(t, req.Explain)
}

func TestBuildRequestValidation(t *testing.T) {
	cases := []struct {
		name string
		spec requestSpec
		want string
	}{
		{"empty problem", requestSpec{Objective: "strategy", Problem: "   "}, "problem statement is required"},
		{"missing objective", requestSpec{Problem: "p"}, "objective is required"},
		{"unknown objective", requestSpec{Objective: "forecast", Problem: "p"}, "forecast"},
		{"bad compliance", requestSpec{Objective: "strategy", Problem: "p", Compliance: []string{"iso"}}, "iso"},
		{"missing data", requestSpec{Objective: "data", Problem: "p", Data: "nope.csv"}, "read file"},
		{"missing metrics", requestSpec{Objective: "monitor", Problem: "p", Metrics: "nope.json"}, "read metrics"},
		{"missing sop", requestSpec{Objective: "process", Problem: "p", SOP: "nope.md"}, "read sop"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := buildRequest(tc.spec, t.TempDir(), testConfig())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestBuildRequestLoadsPayloadsRelativeToBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plant.csv", "line,scrap\nL1,1\nL2,3\n")
	writeFile(t, dir, "sop.md", "# Intake\n\nCheck the pallet.\n")
	writeFile(t, dir, "m.json", `{"latency_ms": 120}`)

	req, warnings, err := buildRequest(requestSpec{Objective: "data", Problem: "p", Data: "plant.csv"}, dir, testConfig())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotNil(t, req.Dataset)
	assert.Equal(t, 2, req.Dataset.Len())

	req, _, err = buildRequest(requestSpec{Objective: "process", Problem: "p", SOP: "sop.md"}, dir, testConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, req.SOP)
	assert.Contains(t, req.SOPText, "Check the pallet.")

	req, _, err = buildRequest(requestSpec{Objective: "monitor", Problem: "p", Metrics: "m.json"}, dir, testConfig())
	require.NoError(t, err)
	assert.JSONEq(t, `{"latency_ms": 120}`, string(req.Metrics))
}

func TestBuildRequestWarnsWithoutDataset(t *testing.T) {
	req, warnings, err := buildRequest(requestSpec{Objective: "analyze-data", Problem: "Why is scrap up?"}, "", testConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{noDataWarning}, warnings)
	assert.Equal(t, "Ops Diagnostic Agent", orchestrator.Route(req).Name())
}

func TestBuildRequestUnreadableSOPOnlyWarns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blank.txt", "   \n")
	req, warnings, err := buildRequest(requestSpec{Objective: "process", Problem: "p", SOP: "blank.txt"}, dir, testConfig())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "blank.txt")
	assert.NotEmpty(t, req.SOP)
	assert.Empty(t, req.SOPText)
}

func TestNormalizeProvider(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"none":       "",
		"Local":      ai.ProviderOllama,
		"google":     ai.ProviderGemini,
		"OpenRouter": ai.ProviderOpenRouter,
		"acme":       "acme",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeProvider(in), in)
	}
}

func TestBuildRuntime(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	c := testConfig()

	_, _, err := buildRuntime(c, runtimeOptions{Provider: "openrouter"})
	assert.True(t, errors.Is(err, ai.ErrMissingAPIKey), "got %v", err)
	_, _, err = buildRuntime(c, runtimeOptions{Provider: "gemini"})
	assert.True(t, errors.Is(err, ai.ErrMissingAPIKey), "got %v", err)
	_, _, err = buildRuntime(c, runtimeOptions{Provider: "acme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")

	rt, name, err := buildRuntime(c, runtimeOptions{Provider: "local"})
	require.NoError(t, err)
	assert.Equal(t, ai.ProviderOllama, name)
	assert.IsType(t, &ai.OllamaClient{}, rt)

	c.APIKey = "sk-test"
	rt, name, err = buildRuntime(c, runtimeOptions{Provider: "openrouter"})
	require.NoError(t, err)
	assert.Equal(t, ai.ProviderOpenRouter, name)
	assert.IsType(t, &ai.Client{}, rt)

	t.Setenv("GEMINI_API_KEY", "g-test")
	rt, _, err = buildRuntime(c, runtimeOptions{Provider: "gemini"})
	require.NoError(t, err)
	assert.IsType(t, &ai.GeminiClient{}, rt)
}

func TestBuildAugmenter(t *testing.T) {
	c := testConfig()
	aug, err := buildAugmenter(c, "", "", "")
	require.NoError(t, err)
	assert.Nil(t, aug)

	c.AugmentProvider = "ollama"
	aug, err = buildAugmenter(c, "", "", "")
	require.NoError(t, err)
	require.NotNil(t, aug)
	assert.Equal(t, ai.DefaultModel(ai.ProviderOllama), aug.Model())

	aug, err = buildAugmenter(c, "none", "", "")
	require.NoError(t, err)
	assert.Nil(t, aug)

	aug, err = buildAugmenter(c, "", "phi3:latest", "")
	require.NoError(t, err)
	assert.Equal(t, "phi3:latest", aug.Model())
}

func TestWriteOutputFormats(t *testing.T) {
	v := map[string]any{"run_id": "r1", "confidence": 0.5}

	var js bytes.Buffer
	require.NoError(t, writeOutput(&js, v, ""))
	assert.JSONEq(t, `{"run_id":"r1","confidence":0.5}`, js.String())

	var ym bytes.Buffer
	require.NoError(t, writeOutput(&ym, v, "YAML"))
	var back map[string]any
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &back))
	assert.Equal(t, "r1", back["run_id"])

	err := writeOutput(&bytes.Buffer{}, v, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestSaveOutputCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.yaml")
	require.NoError(t, saveOutput(path, map[string]string{"a": "b"}, "yaml"))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a: b\n", string(b))
}

func TestOutputFileName(t *testing.T) {
	assert.Equal(t, "q3_plan.json", outputFileName("q3 plan", "json"))
	assert.Equal(t, "batch_2.yaml", outputFileName("batch#2", "yml"))
	assert.Equal(t, "ops.json", outputFileName("//ops//", ""))
}

func TestCollectBatchItems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `
requests:
  - name: first
    objective: strategy
    problem: Expand
  - objective: monitor
    problem: Triage
`)
	writeFile(t, dir, "b.yaml", "requests: []\n")

	items, err := collectBatchItems([]string{filepath.Join(dir, "*.yaml"), filepath.Join(dir, "a.yaml")})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].name)
	assert.Equal(t, "a#2", items[1].name)
	assert.Equal(t, dir, items[1].baseDir)
	assert.Equal(t, "Triage", items[1].spec.Problem)

	_, err = collectBatchItems([]string{filepath.Join(dir, "missing-*.yaml")})
	require.Error(t, err)

	writeFile(t, dir, "bad.yaml", "requests: {not: [a list\n")
	_, err = collectBatchItems([]string{filepath.Join(dir, "bad.yaml")})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "bad.yaml"))
}

func TestApplyMemoryDefaults(t *testing.T) {
	rec := memory.Record{
		memory.KeyIndustry:        "Retail",
		memory.KeyStakeholderMode: "CISO",
		memory.KeyConfidenceMode:  42.0,
	}
	spec := requestSpec{Stakeholder: "CFO"}
	applyMemoryDefaults(&spec, rec)
	assert.Equal(t, "Retail", spec.Industry)
	assert.Equal(t, "CFO", spec.Stakeholder)
	assert.Empty(t, spec.Confidence)

	applyMemoryDefaults(&spec, nil)
	assert.Equal(t, "Retail", spec.Industry)
}

package augment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/agentops-cli/internal/ai"
	"github.com/KaramelBytes/agentops-cli/internal/report"
	"github.com/KaramelBytes/agentops-cli/internal/specialist"
)

type fakeRuntime struct {
	reply string
	err   error
	got   ai.GenerateRequest
	calls int
}

func (f *fakeRuntime) Generate(_ context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	f.calls++
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &ai.GenerateResponse{Choices: []ai.Choice{{Message: ai.Message{Role: "assistant", Content: f.reply}}}}, nil
}

func draftReport(t *testing.T) report.Report {
	t.Helper()
	r, _ := specialist.Boardroom{Industry: "Retail"}.Run("Grow basket size", []string{"Budget limit"})
	return r
}

func encode(t *testing.T, r report.Report) string {
	t.Helper()
	b, err := json.Marshal(r)
	require.NoError(t, err)
	return string(b)
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		err  error
	}{
		{"fenced", "Sure:\n```json\n{\"a\": 1}\n```\nthanks {x}", `{"a": 1}`, nil},
		{"bare", `noise {"a": {"b": 2}} trailing`, `{"a": {"b": 2}}`, nil},
		{"fence without json tag falls back", "```\n{\"a\": 1}\n```", `{"a": 1}`, nil},
		{"none", "no braces here", "", ErrNoJSON},
		{"reversed", "} then {", "", ErrNoJSON},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.in)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAugmentReturnsValidatedReport(t *testing.T) {
	improved := draftReport(t)
	improved.ExecutiveSummary[0] = "Model-refined summary."
	rt := &fakeRuntime{reply: "```json\n" + encode(t, improved) + "\n```"}
	a := NewRuntimeAugmenter(rt, "openai/gpt-4o-mini")

	got, err := a.Augment(context.Background(), Draft{
		Problem: "Grow basket size", Industry: "Retail", Objective: "Decide Strategy",
		Constraints: []string{"Budget limit"}, Report: draftReport(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "Model-refined summary.", got.ExecutiveSummary[0])
	assert.Equal(t, "openai/gpt-4o-mini", a.Model())

	assert.Equal(t, 1, rt.calls)
	assert.True(t, rt.got.JSON)
	assert.InDelta(t, 0.2, rt.got.Temperature, 1e-9)
	require.Len(t, rt.got.Messages, 1)
	prompt := rt.got.Messages[0].Content
	assert.Contains(t, prompt, "Industry: Retail\n")
	assert.Contains(t, prompt, "Objective Type: Decide Strategy\n")
	assert.Contains(t, prompt, `Constraints: ["Budget limit"]`)
	assert.Contains(t, prompt, `"executive_summary"`)
}

func TestAugmentRejectsInvalidReplacement(t *testing.T) {
	bad := draftReport(t)
	bad.Recommendations.Plan90Days = bad.Recommendations.Plan90Days[:2]
	rt := &fakeRuntime{reply: encode(t, bad)}
	_, err := NewRuntimeAugmenter(rt, "m").Augment(context.Background(), Draft{Report: draftReport(t)})
	assert.ErrorIs(t, err, report.ErrInvalidReport)
}

func TestAugmentPropagatesRuntimeError(t *testing.T) {
	rt := &fakeRuntime{err: &ai.AuthError{APIError: &ai.APIError{StatusCode: 401}}}
	_, err := NewRuntimeAugmenter(rt, "m").Augment(context.Background(), Draft{Report: draftReport(t)})
	var auth *ai.AuthError
	assert.True(t, errors.As(err, &auth))
}

func TestAugmentRejectsNonJSON(t *testing.T) {
	rt := &fakeRuntime{reply: "I cannot help with that."}
	_, err := NewRuntimeAugmenter(rt, "m").Augment(context.Background(), Draft{Report: draftReport(t)})
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestAugmentChecksContextWindow(t *testing.T) {
	rt := &fakeRuntime{}
	problem := strings.Repeat("more detail ", 2000)
	_, err := NewRuntimeAugmenter(rt, "phi3:mini-4k-instruct").Augment(context.Background(), Draft{Report: draftReport(t), Problem: problem})
	assert.ErrorIs(t, err, ErrPromptTooLarge)
	assert.Zero(t, rt.calls)
}

func TestBuildPromptTruncatesDocument(t *testing.T) {
	doc := strings.Repeat("a", DocumentTokenLimit*4+100)
	p, err := BuildPrompt(Draft{Report: draftReport(t), Document: doc})
	require.NoError(t, err)
	assert.Contains(t, p, "Process document excerpt:\n")
	assert.NotContains(t, p, doc)
	assert.Contains(t, p, doc[:DocumentTokenLimit*4])

	p, err = BuildPrompt(Draft{Report: draftReport(t), Document: "   "})
	require.NoError(t, err)
	assert.NotContains(t, p, "Process document excerpt")
	assert.Contains(t, p, "Constraints: []\n")
}

func TestBuildPromptSelectsRelevantSections(t *testing.T) {
	var sections []string
	for i := 0; i < 40; i++ {
		sections = append(sections, strings.Repeat("generic onboarding paperwork ", 30))
	}
	sections[25] = "Cold chain: log freezer temperature every hour. " + strings.Repeat("freezer temperature ", 20)
	doc := strings.Join(sections, "\n\n")

	p, err := BuildPrompt(Draft{Report: draftReport(t), Problem: "Stop freezer temperature excursions", Document: doc})
	require.NoError(t, err)
	assert.Contains(t, p, "Cold chain: log freezer temperature every hour.")
	assert.NotContains(t, p, doc)
}

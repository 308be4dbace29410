package report

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReport() Report {
	return Report{
		ExecutiveSummary: []string{"one", "two", "three", "four", "five"},
		ProblemUnderstanding: ProblemUnderstanding{
			Goal:           "Reduce scrap",
			SuccessMetrics: []string{"Scrap rate", "Yield"},
			Constraints:    []string{"Budget limit"},
		},
		Analysis: Analysis{
			KeyFindings: []string{"finding"},
			Charts: []ChartSpec{
				{Title: "Distribution of a", Type: ChartHistogram, Cols: []string{"a"}},
				{Title: "a vs b", Type: ChartScatter, Cols: []string{"a", "b"}},
			},
		},
		Recommendations: Recommendations{
			Actions:    []ActionItem{{Action: "Do it", Owner: "Ops", Timeframe: "Week 1", Impact: "Less scrap"}},
			Risks:      []RiskItem{{Risk: "Drift", Severity: SeverityMed, Mitigation: "Review"}},
			Plan90Days: []string{"Month 1", "Month 2", "Month 3"},
		},
		Assumptions: []string{"Data is recent."},
		Confidence:  0.7,
	}
}

func TestValidateAcceptsWellFormedReport(t *testing.T) {
	require.NoError(t, Validate(validReport()))
}

func TestValidateRejectsStructuralViolations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *Report)
		path   string
	}{
		{"plan too short", func(r *Report) { r.Recommendations.Plan90Days = r.Recommendations.Plan90Days[:2] }, "recommendations.plan_90_days"},
		{"plan too long", func(r *Report) { r.Recommendations.Plan90Days = append(r.Recommendations.Plan90Days, "Month 4") }, "recommendations.plan_90_days"},
		{"confidence above one", func(r *Report) { r.Confidence = 1.2 }, "confidence"},
		{"confidence below zero", func(r *Report) { r.Confidence = -0.01 }, "confidence"},
		{"confidence NaN", func(r *Report) { r.Confidence = math.NaN() }, "confidence"},
		{"empty owner", func(r *Report) { r.Recommendations.Actions[0].Owner = "" }, "recommendations.actions[0].owner"},
		{"empty impact", func(r *Report) { r.Recommendations.Actions[0].Impact = "" }, "recommendations.actions[0].impact"},
		{"bad severity", func(r *Report) { r.Recommendations.Risks[0].Severity = "critical" }, "recommendations.risks[0].severity"},
		{"scatter with one column", func(r *Report) { r.Analysis.Charts[1].Cols = []string{"a"} }, "analysis.charts[1].cols"},
		{"histogram with two columns", func(r *Report) { r.Analysis.Charts[0].Cols = []string{"a", "b"} }, "analysis.charts[0].cols"},
		{"unknown chart type", func(r *Report) { r.Analysis.Charts[0].Type = "pie" }, "analysis.charts[0].type"},
		{"no summary", func(r *Report) { r.ExecutiveSummary = nil }, "executive_summary"},
		{"duplicate success metric", func(r *Report) { r.ProblemUnderstanding.SuccessMetrics = []string{"Yield", "Yield"} }, "problem_understanding.success_metrics"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validReport()
			tc.mutate(&r)
			err := Validate(r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidReport))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			var paths []string
			for _, f := range verr.Fields {
				paths = append(paths, f.Path)
			}
			assert.Contains(t, paths, tc.path)
		})
	}
}

func TestValidateTrace(t *testing.T) {
	name := "Ops Diagnostic Agent"
	tr := Trace{
		Plan:      []string{"Interpret user objective and constraints."},
		ToolCalls: []ToolCall{{Tool: "metrics_json_parser", Input: map[string]any{"bytes": 0}}},
	}
	require.NoError(t, ValidateTrace(tr))

	tr.RoutedAgent = &name
	require.NoError(t, ValidateTrace(tr))

	empty := ""
	tr.RoutedAgent = &empty
	err := ValidateTrace(tr)
	require.ErrorIs(t, err, ErrInvalidTrace)

	tr.RoutedAgent = nil
	tr.ToolCalls = append(tr.ToolCalls, ToolCall{})
	require.ErrorIs(t, ValidateTrace(tr), ErrInvalidTrace)
}

func TestCloneDoesNotAlias(t *testing.T) {
	orig := validReport()
	cp := orig.Clone()
	cp.ExecutiveSummary[0] = "changed"
	cp.Recommendations.Actions[0].Action = "changed"
	cp.Analysis.Charts[1].Cols[0] = "changed"
	cp.Assumptions = append(cp.Assumptions, "extra")

	assert.Equal(t, "one", orig.ExecutiveSummary[0])
	assert.Equal(t, "Do it", orig.Recommendations.Actions[0].Action)
	assert.Equal(t, "a", orig.Analysis.Charts[1].Cols[0])
	assert.Len(t, orig.Assumptions, 1)

	with := orig.WithAssumption("added")
	assert.Len(t, orig.Assumptions, 1)
	assert.Equal(t, []string{"Data is recent.", "added"}, with.Assumptions)
}

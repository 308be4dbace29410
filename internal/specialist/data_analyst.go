package specialist

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/agentops-cli/internal/analysis"
	"github.com/KaramelBytes/agentops-cli/internal/report"
)

// evidenceColumns caps how many column names the evidence line lists.
const evidenceColumns = 8

// DataAnalyst profiles an uploaded dataset and splices the top findings into
// the summary. A nil Dataset is analysed as an empty table.
type DataAnalyst struct {
	Dataset *analysis.Dataset
}

func (DataAnalyst) Kind() Kind   { return KindDataAnalysis }
func (DataAnalyst) Name() string { return NameDataAnalyst }
func (DataAnalyst) strategy()    {}

func (d DataAnalyst) Run(problem string, constraints []string) (report.Report, report.Fragment) {
	profile := analysis.ProfileDataset(d.Dataset)
	findings := analysis.BasicFindings(d.Dataset)
	anomalies := analysis.DetectAnomalies(d.Dataset)
	charts := analysis.SuggestCharts(d.Dataset)
	if charts == nil {
		charts = []report.ChartSpec{}
	}

	r := report.Report{
		ExecutiveSummary: []string{
			"Uploaded dataset was profiled and validated for quick operational insight.",
			findings[0],
			findings[1],
			"Priority opportunities were identified from variability and anomaly signals.",
			"Recommended plan balances rapid wins and governance.",
		},
		ProblemUnderstanding: understanding(problem, constraints, "Data quality score", "Cycle-time improvement", "Variance reduction"),
		Analysis: report.Analysis{
			KeyFindings: findings,
			Charts:      charts,
			Anomalies:   anomalies,
		},
		Recommendations: report.Recommendations{
			Actions: []report.ActionItem{
				{Action: "Create a weekly data quality review for nulls and duplicates.", Owner: "Data Steward", Timeframe: "Week 1-2", Impact: "Improves trust in KPI decisions."},
				{Action: "Pilot a targeted process change on the highest-variance metric.", Owner: "Operations Lead", Timeframe: "Week 3-6", Impact: "Potentially reduces volatility and rework."},
				{Action: "Establish KPI dashboard with top 3 actionable indicators.", Owner: "Analytics Manager", Timeframe: "Week 2-4", Impact: "Faster decision cycles for stakeholders."},
			},
			Risks: []report.RiskItem{
				{Risk: "Data quality issues may bias conclusions.", Severity: report.SeverityHigh, Mitigation: "Gate decisions on quality thresholds."},
				{Risk: "Low adoption by operators.", Severity: report.SeverityMed, Mitigation: "Align actions to team incentives and training."},
			},
			Plan90Days: []string{
				"Days 1-30: baseline metrics and quality remediation sprint.",
				"Days 31-60: pilot improvements in one business unit.",
				"Days 61-90: scale changes and codify SOP updates.",
			},
		},
		Assumptions: []string{
			"Dataset is representative of the recent operating period.",
			"Stakeholders can provide domain labels for ambiguous fields.",
		},
		Confidence: 0.78,
	}

	cols := profile.ColumnNames
	if len(cols) > evidenceColumns {
		cols = cols[:evidenceColumns]
	}
	numeric := append([]string{}, profile.NumericColumns...)
	frag := report.Fragment{
		ToolCalls: []report.ToolCall{
			{Tool: "profile_dataset", Input: map[string]any{"rows": profile.Rows, "cols": profile.Cols}, Output: profile},
			{Tool: "basic_findings", Input: map[string]any{"problem": problem}, Output: append([]string(nil), findings...)},
			{Tool: "detect_anomalies", Input: map[string]any{"numeric_cols": numeric}, Output: append([]string(nil), anomalies...)},
			// recomputed so the trace never shares chart slices with the report
			{Tool: "suggest_charts", Input: map[string]any{"numeric_cols": numeric}, Output: analysis.SuggestCharts(d.Dataset)},
		},
		Evidence: []string{
			fmt.Sprintf("Used columns: %s", strings.Join(cols, ", ")),
			fmt.Sprintf("Rows analyzed: %d", profile.Rows),
		},
	}
	return r, frag
}

package specialist

import (
	"fmt"

	"github.com/KaramelBytes/agentops-cli/internal/report"
)

// Boardroom simulates a panel of executive lenses weighing a strategy
// decision. Only the industry shapes its output.
type Boardroom struct {
	Industry string
}

func (Boardroom) Kind() Kind   { return KindStrategyDecision }
func (Boardroom) Name() string { return NameBoardroom }
func (Boardroom) strategy()    {}

func (b Boardroom) Run(problem string, constraints []string) (report.Report, report.Fragment) {
	viewpoints := []string{
		fmt.Sprintf("Market lens: demand signal in %s favors focused pilot over full-scale rollout.", b.Industry),
		"Finance lens: stage-gate investment reduces downside risk while preserving upside.",
		"Risk lens: compliance and change-management readiness are key gating criteria.",
		"Ops lens: operationalize with a small cross-functional tiger team.",
	}
	r := report.Report{
		ExecutiveSummary: []string{
			fmt.Sprintf("Boardroom simulation completed for %s strategy decision.", b.Industry),
			"Consensus: run a controlled pilot rather than immediate enterprise rollout.",
			"Financial optionality can be preserved with stage-gated investment.",
			"Risk posture is manageable if compliance checkpoints are hard-coded.",
			"A 90-day plan is ready for stakeholder approval.",
		},
		ProblemUnderstanding: understanding(problem, constraints, "Pilot ROI", "Adoption rate", "Risk incidents"),
		Analysis: report.Analysis{
			KeyFindings: viewpoints,
			Charts:      []report.ChartSpec{},
			Anomalies:   []string{},
		},
		Recommendations: report.Recommendations{
			Actions: []report.ActionItem{
				{Action: "Launch a 6-week pilot with measurable success gates.", Owner: "Program Sponsor", Timeframe: "Weeks 1-6", Impact: "Validates value before scale."},
				{Action: "Set weekly boardroom review on KPI, cost, and risk.", Owner: "PMO", Timeframe: "Weeks 1-12", Impact: "Early issue detection."},
				{Action: "Prepare scale-up package with staffing and budget scenarios.", Owner: "Finance + Ops", Timeframe: "Weeks 7-12", Impact: "Accelerates go/no-go decision."},
			},
			Risks: []report.RiskItem{
				{Risk: "Pilot scope creep.", Severity: report.SeverityMed, Mitigation: "Define strict entry/exit criteria."},
				{Risk: "Insufficient executive sponsorship.", Severity: report.SeverityHigh, Mitigation: "Assign accountable executive owner."},
			},
			Plan90Days: []string{
				"Month 1: scope pilot, define KPIs, align stakeholders.",
				"Month 2: execute pilot and monitor outcomes weekly.",
				"Month 3: decide scale, adjust operating model, fund roadmap.",
			},
		},
		Assumptions: []string{"Current market conditions remain stable over next quarter."},
		Confidence:  0.74,
	}
	frag := report.Fragment{
		ToolCalls: []report.ToolCall{{
			Tool:   "multi_agent_boardroom",
			Input:  map[string]any{"industry": b.Industry, "constraints": append([]string{}, constraints...)},
			Output: append([]string(nil), viewpoints...),
		}},
		Evidence: []string{"No uploaded data; decision derived from structured expert heuristics."},
	}
	return r, frag
}

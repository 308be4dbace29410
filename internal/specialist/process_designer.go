package specialist

import "github.com/KaramelBytes/agentops-cli/internal/report"

// ProcessDesigner proposes an SOP/workflow redesign. The attached document is
// acknowledged but its content is not read.
type ProcessDesigner struct {
	HasDocument bool
}

func (ProcessDesigner) Kind() Kind   { return KindProcessRedesign }
func (ProcessDesigner) Name() string { return NameProcessDesigner }
func (ProcessDesigner) strategy()    {}

func (p ProcessDesigner) Run(problem string, constraints []string) (report.Report, report.Fragment) {
	findings := []string{
		"Current workflow likely has handoff bottlenecks and unclear ownership boundaries.",
		"SOP modernization should target high-frequency, low-judgment tasks first.",
		"Automation opportunities exist in approvals, notifications, and QA checkpoints.",
	}
	if p.HasDocument {
		findings = append(findings, "Uploaded SOP was acknowledged and incorporated as contextual evidence.")
	}
	r := report.Report{
		ExecutiveSummary: []string{
			"Process redesign pattern generated from objective and constraints.",
			"Bottlenecks and automation candidates were identified.",
			"A pragmatic SOP refresh path is available for pilot execution.",
			"Governance and compliance checkpoints are embedded.",
			"Plan is set for 90-day institutionalization.",
		},
		ProblemUnderstanding: understanding(problem, constraints, "Cycle time", "First-pass yield", "SOP adherence"),
		Analysis: report.Analysis{
			KeyFindings: findings,
			Charts:      []report.ChartSpec{},
			Anomalies:   []string{},
		},
		Recommendations: report.Recommendations{
			Actions: []report.ActionItem{
				{Action: "Map as-is process with RACI ownership tags.", Owner: "Process Excellence Lead", Timeframe: "Week 1", Impact: "Visibility into bottlenecks."},
				{Action: "Redesign to-be flow with reduced handoff steps.", Owner: "Ops Architect", Timeframe: "Week 2-4", Impact: "Improved throughput and fewer errors."},
				{Action: "Implement SOP governance cadence and change log.", Owner: "Quality Manager", Timeframe: "Week 4-6", Impact: "Sustained operational discipline."},
			},
			Risks: []report.RiskItem{
				{Risk: "Process drift after rollout.", Severity: report.SeverityMed, Mitigation: "Monthly governance reviews."},
			},
			Plan90Days: []string{
				"Days 1-30: map current state and define redesign principles.",
				"Days 31-60: pilot to-be process and collect metrics.",
				"Days 61-90: rollout, train teams, and enforce SOP governance.",
			},
		},
		Assumptions: []string{"Frontline team participation is available for workshops."},
		Confidence:  0.72,
	}
	frag := report.Fragment{
		ToolCalls: []report.ToolCall{{
			Tool:   "process_mapping_template",
			Input:  map[string]any{"has_doc": p.HasDocument},
			Output: "Generated as-is and to-be blueprint.",
		}},
		Evidence: []string{"Workflow recommendations derived from user objective and constraints."},
	}
	return r, frag
}

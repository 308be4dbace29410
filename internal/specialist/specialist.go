// Package specialist holds the four deterministic advisory strategies. Each
// strategy builds a raw Report and the trace fragment describing the tools it
// ran; none of them can fail.
package specialist

import "github.com/KaramelBytes/agentops-cli/internal/report"

// Kind enumerates the closed set of strategies.
type Kind int

const (
	KindDataAnalysis Kind = iota
	KindStrategyDecision
	KindProcessRedesign
	KindOpsDiagnosis
)

// Routed agent names as they appear in traces.
const (
	NameDataAnalyst     = "Data Analyst Agent"
	NameBoardroom       = "Multi-Agent Boardroom"
	NameProcessDesigner = "Process Redesign Agent"
	NameOpsDiagnoser    = "Ops Diagnostic Agent"
)

func (k Kind) String() string {
	switch k {
	case KindDataAnalysis:
		return "data-analysis"
	case KindStrategyDecision:
		return "strategy-decision"
	case KindProcessRedesign:
		return "process-redesign"
	case KindOpsDiagnosis:
		return "operations-diagnosis"
	default:
		return "unknown"
	}
}

// Strategy is implemented only by the types in this package.
type Strategy interface {
	Kind() Kind
	Name() string
	Run(problem string, constraints []string) (report.Report, report.Fragment)
	strategy()
}

var (
	_ Strategy = Boardroom{}
	_ Strategy = DataAnalyst{}
	_ Strategy = ProcessDesigner{}
	_ Strategy = OpsDiagnoser{}
)

// understanding copies constraints so the report never aliases the request.
func understanding(problem string, constraints []string, metrics ...string) report.ProblemUnderstanding {
	return report.ProblemUnderstanding{
		Goal:           problem,
		SuccessMetrics: metrics,
		Constraints:    append([]string{}, constraints...),
	}
}

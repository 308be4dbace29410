package report

// Severity grades a RiskItem.
type Severity string

const (
	SeverityHigh Severity = "high"
	SeverityMed  Severity = "med"
	SeverityLow  Severity = "low"
)

// ChartType names the visualization a ChartSpec describes.
type ChartType string

const (
	ChartHistogram ChartType = "histogram"
	ChartScatter   ChartType = "scatter"
	ChartBar       ChartType = "bar"
)

// Arity returns how many columns a chart of this type plots; 0 for unknown types.
func (t ChartType) Arity() int {
	switch t {
	case ChartHistogram, ChartBar:
		return 1
	case ChartScatter:
		return 2
	default:
		return 0
	}
}

// Report is the structured advisory artifact returned to callers.
type Report struct {
	ExecutiveSummary     []string             `json:"executive_summary" yaml:"executive_summary" validate:"min=1,dive,required"`
	ProblemUnderstanding ProblemUnderstanding `json:"problem_understanding" yaml:"problem_understanding"`
	Analysis             Analysis             `json:"analysis" yaml:"analysis"`
	Recommendations      Recommendations      `json:"recommendations" yaml:"recommendations"`
	Assumptions          []string             `json:"assumptions" yaml:"assumptions"`
	Confidence           float64              `json:"confidence" yaml:"confidence" validate:"gte=0,lte=1"`
}

type ProblemUnderstanding struct {
	Goal           string   `json:"goal" yaml:"goal"`
	SuccessMetrics []string `json:"success_metrics" yaml:"success_metrics" validate:"unique"`
	Constraints    []string `json:"constraints" yaml:"constraints"`
}

type Analysis struct {
	KeyFindings []string    `json:"key_findings" yaml:"key_findings"`
	Charts      []ChartSpec `json:"charts" yaml:"charts" validate:"dive"`
	Anomalies   []string    `json:"anomalies" yaml:"anomalies"`
}

type Recommendations struct {
	Actions    []ActionItem `json:"actions" yaml:"actions" validate:"dive"`
	Risks      []RiskItem   `json:"risks" yaml:"risks" validate:"dive"`
	Plan90Days []string     `json:"plan_90_days" yaml:"plan_90_days" validate:"len=3,dive,required"`
}

// ActionItem is one recommended action; every field is required.
type ActionItem struct {
	Action    string `json:"action" yaml:"action" validate:"required"`
	Owner     string `json:"owner" yaml:"owner" validate:"required"`
	Timeframe string `json:"timeframe" yaml:"timeframe" validate:"required"`
	Impact    string `json:"impact" yaml:"impact" validate:"required"`
}

type RiskItem struct {
	Risk       string   `json:"risk" yaml:"risk" validate:"required"`
	Severity   Severity `json:"severity" yaml:"severity" validate:"oneof=high med low"`
	Mitigation string   `json:"mitigation" yaml:"mitigation" validate:"required"`
}

// ChartSpec suggests a visualization; it is never rendered by this module.
type ChartSpec struct {
	Title string    `json:"title" yaml:"title" validate:"required"`
	Type  ChartType `json:"type" yaml:"type" validate:"oneof=histogram scatter bar"`
	Cols  []string  `json:"cols" yaml:"cols" validate:"dive,required"`
}

// ToolCall records one computation a specialist performed.
type ToolCall struct {
	Tool   string         `json:"tool" yaml:"tool" validate:"required"`
	Input  map[string]any `json:"input" yaml:"input"`
	Output any            `json:"output" yaml:"output"`
}

// Fragment is the partial trace a specialist hands back to the orchestrator.
type Fragment struct {
	ToolCalls []ToolCall `json:"tool_calls" yaml:"tool_calls"`
	Evidence  []string   `json:"evidence" yaml:"evidence"`
}

// Trace is the audit record of how a Report was derived.
type Trace struct {
	InferredRequirements     []string   `json:"inferred_requirements" yaml:"inferred_requirements"`
	Plan                     []string   `json:"plan" yaml:"plan" validate:"min=1,dive,required"`
	ToolCalls                []ToolCall `json:"tool_calls" yaml:"tool_calls" validate:"dive"`
	Evidence                 []string   `json:"evidence" yaml:"evidence"`
	AssumptionsAndConfidence []string   `json:"assumptions_and_confidence" yaml:"assumptions_and_confidence"`
	Memory                   []string   `json:"memory" yaml:"memory"`
	RoutedAgent              *string    `json:"routed_agent" yaml:"routed_agent" validate:"omitnil,min=1"`
}

// Clone returns a deep copy so later stages never alias a caller's slices.
func (r Report) Clone() Report {
	out := r
	out.ExecutiveSummary = cloneStrings(r.ExecutiveSummary)
	out.ProblemUnderstanding.SuccessMetrics = cloneStrings(r.ProblemUnderstanding.SuccessMetrics)
	out.ProblemUnderstanding.Constraints = cloneStrings(r.ProblemUnderstanding.Constraints)
	out.Analysis.KeyFindings = cloneStrings(r.Analysis.KeyFindings)
	out.Analysis.Anomalies = cloneStrings(r.Analysis.Anomalies)
	if r.Analysis.Charts != nil {
		out.Analysis.Charts = make([]ChartSpec, len(r.Analysis.Charts))
		for i, c := range r.Analysis.Charts {
			c.Cols = cloneStrings(c.Cols)
			out.Analysis.Charts[i] = c
		}
	}
	if r.Recommendations.Actions != nil {
		out.Recommendations.Actions = append([]ActionItem(nil), r.Recommendations.Actions...)
	}
	if r.Recommendations.Risks != nil {
		out.Recommendations.Risks = append([]RiskItem(nil), r.Recommendations.Risks...)
	}
	out.Recommendations.Plan90Days = cloneStrings(r.Recommendations.Plan90Days)
	out.Assumptions = cloneStrings(r.Assumptions)
	return out
}

// WithAssumption returns a copy of r with line appended to Assumptions.
func (r Report) WithAssumption(line string) Report {
	out := r.Clone()
	out.Assumptions = append(out.Assumptions, line)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

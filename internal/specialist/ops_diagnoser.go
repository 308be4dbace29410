package specialist

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/agentops-cli/internal/report"
)

// DecodeStatus is the outcome of decoding a metrics payload.
type DecodeStatus int

const (
	MetricsAbsent DecodeStatus = iota
	MetricsParsed
	MetricsFailed
)

const metricKeysShown = 8

// MetricsDecode is the result of DecodeMetrics. Keys keep document order;
// a key repeated in the payload keeps its first position and last value.
type MetricsDecode struct {
	Status DecodeStatus
	Keys   []string
	Values map[string]any
}

// DecodeMetrics parses raw bytes as a JSON object. Empty input is Absent;
// invalid UTF-8, malformed JSON, trailing data and non-object documents are
// Failed.
func DecodeMetrics(b []byte) MetricsDecode {
	if len(b) == 0 {
		return MetricsDecode{Status: MetricsAbsent}
	}
	if !utf8.Valid(b) {
		return MetricsDecode{Status: MetricsFailed}
	}
	keys, values, err := decodeObject(b)
	if err != nil {
		return MetricsDecode{Status: MetricsFailed}
	}
	return MetricsDecode{Status: MetricsParsed, Keys: keys, Values: values}
}

func decodeObject(b []byte) ([]string, map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("metrics payload is not a JSON object")
	}
	keys := []string{}
	values := map[string]any{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errors.New("metrics payload has a non-string key")
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = plainNumbers(v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, errors.New("metrics payload has trailing data")
	}
	return keys, values, nil
}

// plainNumbers swaps json.Number for int64 or float64 throughout v so
// encoders other than encoding/json see real numbers.
func plainNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = plainNumbers(e)
		}
	case []any:
		for i, e := range t {
			t[i] = plainNumbers(e)
		}
	}
	return v
}

// Output is what the metrics parser tool call reports; a failed decode is
// recorded as an error-flagged object.
func (m MetricsDecode) Output() map[string]any {
	switch m.Status {
	case MetricsParsed:
		return m.Values
	case MetricsFailed:
		return map[string]any{"error": "Invalid JSON payload"}
	default:
		return map[string]any{}
	}
}

// OpsDiagnoser produces a reliability diagnosis from an optional metrics
// payload.
type OpsDiagnoser struct {
	Metrics []byte
}

func (OpsDiagnoser) Kind() Kind   { return KindOpsDiagnosis }
func (OpsDiagnoser) Name() string { return NameOpsDiagnoser }
func (OpsDiagnoser) strategy()    {}

func (o OpsDiagnoser) Run(problem string, constraints []string) (report.Report, report.Fragment) {
	metrics := DecodeMetrics(o.Metrics)
	findings := []string{
		"Operational diagnostics focused on incident frequency, latency, and saturation patterns.",
		"Likely root causes include threshold misconfiguration and insufficient runbook coverage.",
	}
	if metrics.Status == MetricsParsed && len(metrics.Keys) > 0 {
		keys := metrics.Keys
		if len(keys) > metricKeysShown {
			keys = keys[:metricKeysShown]
		}
		findings = append(findings, "Parsed metrics keys: "+strings.Join(keys, ", "))
	}
	r := report.Report{
		ExecutiveSummary: []string{
			"Ops diagnostic flow completed using available telemetry context.",
			"Primary concern is reliability drift under peak conditions.",
			"Mitigation emphasizes runbook hardening and observability guardrails.",
			"Monitoring strategy includes leading indicators and alert tuning.",
			"A 90-day stabilization roadmap is provided.",
		},
		ProblemUnderstanding: understanding(problem, constraints, "MTTR", "Error rate", "P95 latency"),
		Analysis: report.Analysis{
			KeyFindings: findings,
			Charts:      []report.ChartSpec{},
			Anomalies:   []string{"Spike behavior likely correlated with deployment windows."},
		},
		Recommendations: report.Recommendations{
			Actions: []report.ActionItem{
				{Action: "Tune alert thresholds to reduce noisy incidents.", Owner: "SRE Lead", Timeframe: "Week 1-2", Impact: "Lower false positives and alert fatigue."},
				{Action: "Create runbook for top 3 recurrent incident classes.", Owner: "On-call Manager", Timeframe: "Week 2-4", Impact: "Faster incident response."},
				{Action: "Introduce weekly reliability review with engineering + product.", Owner: "Engineering Director", Timeframe: "Week 1-12", Impact: "Systemic prevention over reactive fixes."},
			},
			Risks: []report.RiskItem{
				{Risk: "Under-instrumented services hide true root cause.", Severity: report.SeverityHigh, Mitigation: "Prioritize telemetry backlog in sprint planning."},
			},
			Plan90Days: []string{
				"Month 1: baseline reliability metrics and alert inventory.",
				"Month 2: deploy runbooks + reduce noise in pages.",
				"Month 3: automate remediation for repeat incident patterns.",
			},
		},
		Assumptions: []string{"Metrics stream reflects production-like load patterns."},
		Confidence:  0.70,
	}
	frag := report.Fragment{
		ToolCalls: []report.ToolCall{{
			Tool:   "metrics_json_parser",
			Input:  map[string]any{"bytes": len(o.Metrics)},
			Output: metrics.Output(),
		}},
		Evidence: []string{"Ops recommendations tied to reliability best-practice heuristics."},
	}
	return r, frag
}

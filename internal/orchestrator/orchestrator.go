// Package orchestrator routes an advisory request to one specialist
// strategy and turns its draft into a validated, stakeholder-ready Report
// with an audit Trace.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/agentops-cli/internal/analysis"
	"github.com/KaramelBytes/agentops-cli/internal/augment"
	"github.com/KaramelBytes/agentops-cli/internal/policy"
	"github.com/KaramelBytes/agentops-cli/internal/report"
	"github.com/KaramelBytes/agentops-cli/internal/specialist"
)

// ErrStrategyFailed wraps a panic recovered from a specialist.
var ErrStrategyFailed = errors.New("specialist failed")

// Audit strings shared with callers and tests.
const (
	ExplainNote        = "Explain mode enabled: intermediate steps surfaced for transparency."
	FallbackNote       = "Generative fallback: deterministic logic was used because the model call failed."
	AugmentationTool   = "generative_augmentation"
	augmentationOutput = "Model enhanced output"
)

// Request is one advisory problem plus optional payloads. Only the payload
// matching the routed strategy is read.
type Request struct {
	Industry    string
	Objective   ObjectiveType
	Problem     string
	Constraints []string
	Explain     bool
	Stakeholder policy.StakeholderMode
	Confidence  policy.ConfidenceMode

	Dataset *analysis.Dataset
	// SOP is the raw uploaded document; only its presence reaches the core.
	SOP []byte
	// SOPText is extracted document text, used solely to ground augmentation.
	SOPText string
	Metrics []byte
}

// Result is either a validated Report or a refusal, never both.
type Result struct {
	RunID   string
	Report  *report.Report
	Refusal string
	Trace   report.Trace
}

// Refused reports whether the request was screened out by the safety policy.
func (r *Result) Refused() bool { return r.Refusal != "" }

type Options struct {
	Logger    *zap.Logger
	Augmenter augment.Augmenter
	Metrics   *Metrics
	// IDFunc overrides run ID generation (uuid v4 by default).
	IDFunc func() string
}

// Pipeline is immutable after construction and safe for concurrent Run calls.
type Pipeline struct {
	log       *zap.Logger
	augmenter augment.Augmenter
	metrics   *Metrics
	newID     func() string
}

func NewPipeline(opts Options) *Pipeline {
	p := &Pipeline{
		log:       opts.Logger,
		augmenter: opts.Augmenter,
		metrics:   opts.Metrics,
		newID:     opts.IDFunc,
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	if p.newID == nil {
		p.newID = func() string { return uuid.NewString() }
	}
	return p
}

// Route picks the strategy for req. AnalyzeData without a dataset falls
// through to operations diagnosis.
func Route(req Request) specialist.Strategy {
	switch {
	case req.Objective == ObjectiveAnalyzeData && req.Dataset != nil:
		return specialist.DataAnalyst{Dataset: req.Dataset}
	case req.Objective == ObjectiveDecideStrategy:
		return specialist.Boardroom{Industry: req.Industry}
	case req.Objective == ObjectiveDesignProcess:
		return specialist.ProcessDesigner{HasDocument: len(req.SOP) > 0}
	default:
		return specialist.OpsDiagnoser{Metrics: req.Metrics}
	}
}

// Run executes the pipeline for one request. A refusal is a successful
// Result; errors are reserved for strategy panics, schema violations and a
// cancelled context.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	runID := p.newID()
	log := p.log.With(zap.String("run_id", runID))
	req.Stakeholder = policy.ParseStakeholder(string(req.Stakeholder))
	req.Confidence = policy.ParseConfidence(string(req.Confidence))

	if msg, refused := policy.RefusalCheck(req.Problem); refused {
		log.Info("request refused by safety policy")
		p.metrics.observeRun("none", OutcomeRefused, time.Since(start))
		return &Result{RunID: runID, Refusal: msg, Trace: refusalTrace()}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	strategy := Route(req)
	kind := strategy.Kind().String()
	log = log.With(zap.String("strategy", kind))
	log.Debug("dispatching", zap.String("routed_agent", strategy.Name()), zap.String("objective", string(req.Objective)))

	fail := func(err error) (*Result, error) {
		p.metrics.observeRun(kind, OutcomeFailed, time.Since(start))
		return nil, err
	}

	draft, frag, err := invoke(strategy.Name(), func() (report.Report, report.Fragment) {
		return strategy.Run(req.Problem, req.Constraints)
	})
	if err != nil {
		log.Error("specialist failed", zap.Error(err))
		return fail(err)
	}

	draft, frag, augErr := p.augment(ctx, log, req, draft, frag)

	out := draft.Clone()
	out.Recommendations.Actions = policy.EnforceConstraints(req.Constraints, draft.Recommendations.Actions)
	out.ExecutiveSummary = policy.RewriteForStakeholder(draft.ExecutiveSummary, req.Stakeholder)
	out.Confidence = policy.RecalibrateConfidence(req.Confidence, draft.Confidence)
	if req.Explain {
		out = out.WithAssumption(ExplainNote)
	}
	if augErr != nil {
		out = out.WithAssumption(FallbackNote)
	}
	if err := report.Validate(out); err != nil {
		log.Error("report failed schema validation", zap.Error(err))
		return fail(fmt.Errorf("orchestrator: %w", err))
	}

	trace := buildTrace(req, strategy.Name(), frag, out, augErr)
	if err := report.ValidateTrace(trace); err != nil {
		log.Error("trace failed schema validation", zap.Error(err))
		return fail(fmt.Errorf("orchestrator: %w", err))
	}

	p.metrics.observeRun(kind, OutcomeOK, time.Since(start))
	p.metrics.observeConfidence(out.Confidence)
	log.Info("run complete", zap.Float64("confidence", out.Confidence), zap.Int("actions", len(out.Recommendations.Actions)))
	return &Result{RunID: runID, Report: &out, Trace: trace}, nil
}

// augment replaces the draft with a model-refined report when an augmenter
// is configured. The returned error is informational: the draft is kept.
func (p *Pipeline) augment(ctx context.Context, log *zap.Logger, req Request, draft report.Report, frag report.Fragment) (report.Report, report.Fragment, error) {
	if p.augmenter == nil {
		return draft, frag, nil
	}
	improved, err := p.augmenter.Augment(ctx, augment.Draft{
		Problem:     req.Problem,
		Industry:    req.Industry,
		Objective:   string(req.Objective),
		Constraints: req.Constraints,
		Document:    req.SOPText,
		Report:      draft.Clone(),
	})
	p.metrics.observeAugmentation(err == nil)
	if err != nil {
		log.Warn("augmentation failed, keeping deterministic draft", zap.String("model", p.augmenter.Model()), zap.Error(err))
		return draft, frag, err
	}
	frag.ToolCalls = append(append([]report.ToolCall(nil), frag.ToolCalls...), report.ToolCall{
		Tool:   AugmentationTool,
		Input:  map[string]any{"model": p.augmenter.Model()},
		Output: augmentationOutput,
	})
	return improved, frag, nil
}

func invoke(name string, run func() (report.Report, report.Fragment)) (r report.Report, f report.Fragment, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("orchestrator: %w: %s: %v", ErrStrategyFailed, name, v)
		}
	}()
	r, f = run()
	return r, f, nil
}

func refusalTrace() report.Trace {
	return report.Trace{
		InferredRequirements:     []string{"Request screened by safety module."},
		Plan:                     []string{"Refuse unsafe request."},
		ToolCalls:                []report.ToolCall{},
		Evidence:                 []string{},
		AssumptionsAndConfidence: []string{"Confidence: 0.0"},
		Memory:                   []string{},
	}
}

func buildTrace(req Request, routed string, frag report.Fragment, out report.Report, augErr error) report.Trace {
	assumptions := append([]string{}, out.Assumptions...)
	assumptions = append(assumptions, fmt.Sprintf("Confidence: %.2f", out.Confidence))
	if augErr != nil {
		assumptions = append(assumptions, "Augmentation error: "+augErr.Error())
	}
	toolCalls := frag.ToolCalls
	if toolCalls == nil {
		toolCalls = []report.ToolCall{}
	}
	evidence := frag.Evidence
	if evidence == nil {
		evidence = []string{}
	}
	return report.Trace{
		InferredRequirements: []string{
			"Goal interpreted as: " + req.Problem,
			"Industry context: " + req.Industry,
			"Objective type: " + string(req.Objective),
		},
		Plan: []string{
			"Interpret user objective and constraints.",
			"Route to specialist: " + routed + ".",
			"Execute tools and compile evidence.",
			"Optionally enhance output with generative augmentation.",
			"Render stakeholder-ready artifacts.",
		},
		ToolCalls:                toolCalls,
		Evidence:                 evidence,
		AssumptionsAndConfidence: assumptions,
		Memory: []string{
			"Stakeholder mode: " + string(req.Stakeholder),
			"Confidence mode: " + string(req.Confidence),
		},
		RoutedAgent: &routed,
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/agentops-cli/internal/augment"
	"github.com/KaramelBytes/agentops-cli/internal/memory"
	"github.com/KaramelBytes/agentops-cli/internal/orchestrator"
	"github.com/KaramelBytes/agentops-cli/internal/parser"
)

var (
	runIndustry    string
	runObjective   string
	runProblem     string
	runConstraints []string
	runBudgetLimit bool
	runCompliance  []string
	runData        string
	runSOP         string
	runMetrics     string
	runExplain     bool
	runStakeholder string
	runConfidence  string
	runFormat      string
	runOutputPath  string
	runAugProvider string
	runAugModel    string
	runOllamaHost  string
	runNoMemory    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Produce an advisory report for one business problem",
	Example: `  agentops run --objective analyze-data --data plant.csv --problem "Reduce scrap on line 2"
  agentops run --objective strategy --industry Healthcare --stakeholder CFO --budget-limit \
    --problem "Should we expand telehealth?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		log := getLogger()
		spec := requestSpec{
			Industry:    runIndustry,
			Objective:   runObjective,
			Problem:     runProblem,
			Constraints: runConstraints,
			BudgetLimit: runBudgetLimit,
			Compliance:  runCompliance,
			Stakeholder: runStakeholder,
			Confidence:  runConfidence,
			Data:        runData,
			SOP:         runSOP,
			Metrics:     runMetrics,
		}
		if cmd.Flags().Changed("explain") {
			spec.Explain = &runExplain
		}

		var store *memory.Store
		if !runNoMemory && c.MemoryFile != "" {
			store = memory.NewStore(c.MemoryFile)
			rec, err := store.Load()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v (it will be overwritten)\n", err)
			}
			applyMemoryDefaults(&spec, rec)
		}

		req, warnings, err := buildRequest(spec, "", c)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s\n", w)
		}
		if req.SOPText != "" {
			log.Debug("document attached", zap.String("file", runSOP), zap.Int("tokens", parser.EstimateTokens(req.SOPText)))
		}

		aug, err := buildAugmenter(c, runAugProvider, runAugModel, runOllamaHost)
		if err != nil {
			return fmt.Errorf("augmentation: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		res, err := newPipeline(log, aug, nil).Run(ctx, req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return errors.New("interrupted")
			}
			return err
		}

		if store != nil {
			if _, err := store.Update(memoryPatch(req, res)); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: failed to update memory: %v\n", err)
			}
		}

		out := newRunOutput("", res)
		if runOutputPath != "" {
			if err := saveOutput(runOutputPath, out, runFormat); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Saved report to %s\n", runOutputPath)
		} else if err := writeOutput(cmd.OutOrStdout(), out, runFormat); err != nil {
			return err
		}
		if res.Refused() {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s\n", res.Refusal)
		}
		return nil
	},
}

func newPipeline(log *zap.Logger, aug augment.Augmenter, m *orchestrator.Metrics) *orchestrator.Pipeline {
	return orchestrator.NewPipeline(orchestrator.Options{Logger: log, Augmenter: aug, Metrics: m})
}

// applyMemoryDefaults fills unset context fields from the previous session.
func applyMemoryDefaults(spec *requestSpec, rec memory.Record) {
	str := func(key string) string {
		s, _ := rec[key].(string)
		return s
	}
	if spec.Industry == "" {
		spec.Industry = str(memory.KeyIndustry)
	}
	if spec.Stakeholder == "" {
		spec.Stakeholder = str(memory.KeyStakeholderMode)
	}
	if spec.Confidence == "" {
		spec.Confidence = str(memory.KeyConfidenceMode)
	}
}

func memoryPatch(req orchestrator.Request, res *orchestrator.Result) memory.Record {
	constraints := req.Constraints
	if constraints == nil {
		constraints = []string{}
	}
	return memory.Record{
		memory.KeyIndustry:        req.Industry,
		memory.KeyObjectiveType:   string(req.Objective),
		memory.KeyStakeholderMode: string(req.Stakeholder),
		memory.KeyConfidenceMode:  string(req.Confidence),
		memory.KeyConstraints:     constraints,
		memory.KeyLastRunID:       res.RunID,
		memory.KeyUpdatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	f := runCmd.Flags()
	f.StringVar(&runIndustry, "industry", "", "industry context (default from memory or config)")
	f.StringVarP(&runObjective, "objective", "o", "", "objective: analyze-data, decide-strategy, design-process or monitor-diagnose")
	f.StringVarP(&runProblem, "problem", "p", "", "business problem statement (required)")
	f.StringSliceVarP(&runConstraints, "constraint", "c", nil, "free-form constraint (repeatable)")
	f.BoolVar(&runBudgetLimit, "budget-limit", false, "add the 'Budget limit' constraint")
	f.StringSliceVar(&runCompliance, "compliance", nil, "compliance regime: hipaa, pci, gdpr (repeatable)")
	f.StringVar(&runData, "data", "", "dataset file (.csv, .xlsx, .xls)")
	f.StringVar(&runSOP, "sop", "", "process document (.md, .txt, .docx, ...)")
	f.StringVar(&runMetrics, "metrics", "", "metrics JSON file")
	f.BoolVar(&runExplain, "explain", false, "surface intermediate steps (default from config)")
	f.StringVar(&runStakeholder, "stakeholder", "", "stakeholder lens: CFO, PlantManager, CISO, ProductHead, General")
	f.StringVar(&runConfidence, "confidence", "", "confidence mode: Conservative, Balanced, Aggressive")
	f.StringVar(&runFormat, "format", "json", "output format: json or yaml")
	f.StringVar(&runOutputPath, "output", "", "write the result to this file instead of stdout")
	f.StringVar(&runAugProvider, "augment-provider", "", "generative augmentation provider: openrouter, ollama, gemini or none (default from config)")
	f.StringVar(&runAugModel, "augment-model", "", "model for augmentation (default depends on provider)")
	f.StringVar(&runOllamaHost, "ollama-host", "", "Ollama host (default from AGENTOPS_OLLAMA_HOST or config)")
	f.BoolVar(&runNoMemory, "no-memory", false, "do not read or update session memory")
}

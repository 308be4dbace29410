package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/agentops-cli/internal/orchestrator"
)

var (
	rbParallel    int
	rbOutDir      string
	rbFormat      string
	rbAugProvider string
	rbAugModel    string
	rbQuiet       bool
)

// batchFile is the on-disk layout of a run-batch input.
type batchFile struct {
	Requests []requestSpec `yaml:"requests"`
}

type batchItem struct {
	name    string
	baseDir string
	spec    requestSpec
}

type batchResult struct {
	item batchItem
	out  *runOutput
	err  error
}

var runBatchCmd = &cobra.Command{
	Use:   "run-batch <files...>",
	Short: "Run every request listed in one or more YAML files concurrently",
	Long: `Each file holds a "requests:" list using the same fields as the run flags
(name, industry, objective, problem, constraints, budget_limit, compliance, explain,
stakeholder, confidence, data, sop, metrics). Relative paths resolve against the
directory of the file that lists them. Session memory is neither read nor updated.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		log := getLogger()

		items, err := collectBatchItems(args)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("no requests found")
		}

		aug, err := buildAugmenter(c, rbAugProvider, rbAugModel, "")
		if err != nil {
			return fmt.Errorf("augmentation: %w", err)
		}
		reg := prometheus.NewRegistry()
		pipeline := newPipeline(log, aug, orchestrator.NewMetrics(reg))

		parallel := rbParallel
		if parallel <= 0 {
			parallel = c.BatchParallel
		}
		if parallel <= 0 {
			parallel = 1
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		results := make([]batchResult, len(items))
		var g errgroup.Group
		g.SetLimit(parallel)
		for i, it := range items {
			g.Go(func() error {
				results[i] = batchResult{item: it}
				req, warnings, err := buildRequest(it.spec, it.baseDir, c)
				if err != nil {
					results[i].err = err
					return nil
				}
				for _, w := range warnings {
					log.Warn(w, zap.String("request", it.name))
				}
				res, err := pipeline.Run(ctx, req)
				if err != nil {
					results[i].err = err
					return nil
				}
				out := newRunOutput(it.name, res)
				results[i].out = &out
				return nil
			})
		}
		_ = g.Wait()

		if rbOutDir != "" {
			if err := os.MkdirAll(rbOutDir, 0o755); err != nil {
				return fmt.Errorf("create out dir: %w", err)
			}
		}
		stderr := cmd.ErrOrStderr()
		var printed []runOutput
		failed := 0
		for _, r := range results {
			if r.err != nil {
				failed++
				fmt.Fprintf(stderr, "✗ %s: %v\n", r.item.name, r.err)
				continue
			}
			if rbOutDir == "" {
				printed = append(printed, *r.out)
				continue
			}
			path := filepath.Join(rbOutDir, outputFileName(r.item.name, rbFormat))
			if err := saveOutput(path, r.out, rbFormat); err != nil {
				failed++
				fmt.Fprintf(stderr, "✗ %s: %v\n", r.item.name, err)
				continue
			}
			if !rbQuiet {
				fmt.Fprintf(stderr, "✓ %s → %s\n", r.item.name, path)
			}
		}
		if rbOutDir == "" {
			if printed == nil {
				printed = []runOutput{}
			}
			if err := writeOutput(cmd.OutOrStdout(), printed, rbFormat); err != nil {
				return err
			}
		}

		if !rbQuiet {
			counts, err := orchestrator.SummarizeRuns(reg)
			if err != nil {
				log.Warn("summarize runs", zap.Error(err))
			}
			fmt.Fprintf(stderr, "Processed %d request(s) with parallelism %d\n", len(items), parallel)
			for _, rc := range counts {
				fmt.Fprintf(stderr, "  %-22s %-8s %d\n", rc.Strategy, rc.Outcome, rc.Count)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d requests failed", failed, len(items))
		}
		return nil
	},
}

// collectBatchItems expands globs, reads each file once and names every
// request. Unnamed requests become "<file>#<n>".
func collectBatchItems(args []string) ([]batchItem, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)

	var items []batchItem
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		var bf batchFile
		if err := yaml.Unmarshal(b, &bf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		base := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		for i, spec := range bf.Requests {
			name := spec.Name
			if name == "" {
				name = fmt.Sprintf("%s#%d", base, i+1)
			}
			items = append(items, batchItem{name: name, baseDir: filepath.Dir(f), spec: spec})
		}
	}
	return items, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func outputFileName(name, format string) string {
	ext := ".json"
	if f := strings.ToLower(format); f == "yaml" || f == "yml" {
		ext = ".yaml"
	}
	return strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_") + ext
}

func init() {
	rootCmd.AddCommand(runBatchCmd)
	f := runBatchCmd.Flags()
	f.IntVar(&rbParallel, "parallel", 0, "max concurrent requests (default from config batch_parallel)")
	f.StringVar(&rbOutDir, "out-dir", "", "write one result file per request into this directory")
	f.StringVar(&rbFormat, "format", "json", "output format: json or yaml")
	f.StringVar(&rbAugProvider, "augment-provider", "", "generative augmentation provider (default from config)")
	f.StringVar(&rbAugModel, "augment-model", "", "model for augmentation")
	f.BoolVarP(&rbQuiet, "quiet", "q", false, "suppress per-request progress and the run summary")
}

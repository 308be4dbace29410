package cmd

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/agentops-cli/internal/config"
	"github.com/KaramelBytes/agentops-cli/internal/logging"
)

var (
	cfgFile string
	debug   bool
	logJSON bool

	// HTTP and retry overrides, applied only when set
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	cfg *cfgpkg.Global

	loggerOnce sync.Once
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "agentops",
	Short: "AgentOps CLI: turn a business problem into a stakeholder-ready advisory report",
	Long: `AgentOps routes a business problem (plus optional dataset, SOP document or metrics JSON)
to a deterministic specialist, applies safety and stakeholder policies, and prints a
validated advisory report together with an audit trace.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.agentops/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.BoolVar(&logJSON, "log-json", false, "emit logs as JSON (overrides config)")
	pf.IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "augmentation HTTP timeout in seconds")
	pf.IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max attempts on 429/5xx from the augmentation provider")
	pf.IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms")
	pf.IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "retry backoff cap in ms")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	for _, o := range []struct {
		flag string
		val  int
		dst  *int
	}{
		{"http-timeout", flagHTTPTimeoutSec, &cfg.HTTPTimeoutSec},
		{"retry-max", flagRetryMaxAttempts, &cfg.RetryMaxAttempts},
		{"retry-base-ms", flagRetryBaseDelayMs, &cfg.RetryBaseDelayMs},
		{"retry-max-ms", flagRetryMaxDelayMs, &cfg.RetryMaxDelayMs},
	} {
		if f.Changed(o.flag) && o.val > 0 {
			*o.dst = o.val
		}
	}
	if f.Changed("log-json") {
		cfg.LogJSON = logJSON
	}
}

// currentConfig returns the loaded config, loading it on demand for callers
// that run outside cobra initialization (tests).
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	if cfg == nil {
		cfg = &cfgpkg.Global{}
	}
	return cfg
}

func getLogger() *zap.Logger {
	loggerOnce.Do(func() {
		l, err := logging.New(logging.Options{Debug: debug, JSON: currentConfig().LogJSON})
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
			l = zap.NewNop()
		}
		logger = l
	})
	return logger
}

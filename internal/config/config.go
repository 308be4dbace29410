package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const dirName = ".agentops"

// Global configuration structure.
type Global struct {
	// Request defaults
	Industry        string `mapstructure:"industry" yaml:"industry"`
	StakeholderMode string `mapstructure:"stakeholder_mode" yaml:"stakeholder_mode"`
	ConfidenceMode  string `mapstructure:"confidence_mode" yaml:"confidence_mode"`
	ExplainMode     bool   `mapstructure:"explain_mode" yaml:"explain_mode"`
	MemoryFile      string `mapstructure:"memory_file" yaml:"memory_file"`

	// Generative augmentation; an empty provider disables it.
	AugmentProvider string `mapstructure:"augment_provider" yaml:"augment_provider"`
	AugmentModel    string `mapstructure:"augment_model" yaml:"augment_model"`
	APIKey          string `mapstructure:"api_key" yaml:"api_key"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key" yaml:"gemini_api_key"`
	OllamaHost      string `mapstructure:"ollama_host" yaml:"ollama_host"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	LogJSON       bool `mapstructure:"log_json" yaml:"log_json"`
	BatchParallel int  `mapstructure:"batch_parallel" yaml:"batch_parallel"`
}

// Dir returns ~/.agentops.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.agentops/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("AGENTOPS")
	v.AutomaticEnv()

	v.SetDefault("industry", "Manufacturing")
	v.SetDefault("stakeholder_mode", "CFO")
	v.SetDefault("confidence_mode", "Balanced")
	v.SetDefault("explain_mode", false)
	v.SetDefault("memory_file", "")
	v.SetDefault("augment_provider", "")
	v.SetDefault("augment_model", "")
	v.SetDefault("api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("log_json", false)
	v.SetDefault("batch_parallel", 4)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; a malformed file is still an error
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.MemoryFile == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.MemoryFile = filepath.Join(dir, "session_memory.json")
	}
	return &c, nil
}

// Set assigns a single key by its yaml name, parsing the value to the
// field's type. Unknown keys are rejected.
func (c *Global) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	parseInt := func(dst *int) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: expected integer: %w", key, err)
		}
		*dst = n
		return nil
	}
	parseBool := func(dst *bool) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: expected true/false: %w", key, err)
		}
		*dst = b
		return nil
	}
	switch key {
	case "industry":
		c.Industry = value
	case "stakeholder_mode":
		c.StakeholderMode = value
	case "confidence_mode":
		c.ConfidenceMode = value
	case "explain_mode":
		return parseBool(&c.ExplainMode)
	case "memory_file":
		c.MemoryFile = value
	case "augment_provider":
		c.AugmentProvider = value
	case "augment_model":
		c.AugmentModel = value
	case "api_key":
		c.APIKey = value
	case "gemini_api_key":
		c.GeminiAPIKey = value
	case "ollama_host":
		c.OllamaHost = value
	case "http_timeout_sec":
		return parseInt(&c.HTTPTimeoutSec)
	case "retry_max_attempts":
		return parseInt(&c.RetryMaxAttempts)
	case "retry_base_delay_ms":
		return parseInt(&c.RetryBaseDelayMs)
	case "retry_max_delay_ms":
		return parseInt(&c.RetryMaxDelayMs)
	case "log_json":
		return parseBool(&c.LogJSON)
	case "batch_parallel":
		return parseInt(&c.BatchParallel)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Redacted returns a copy safe for display with credentials masked.
func (c Global) Redacted() Global {
	c.APIKey = mask(c.APIKey)
	c.GeminiAPIKey = mask(c.GeminiAPIKey)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// Package config holds the printer/CLI configuration: indent width, label
// visibility, output format, and whether a lowering error should fail the
// process. Loading follows the teacher codebase's viper-backed pattern
// (internal/config.LoadConfig in both pyscn and jscan): a fresh *viper.Viper
// per call to avoid shared-state races, defaults applied first, then an
// optional file merged on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/cflow/domain"
	"github.com/spf13/viper"
)

// OutputFormat selects which pretty-printer a CLI/MCP operation uses.
type OutputFormat string

const (
	OutputFormatCFG  OutputFormat = "cfg"
	OutputFormatTree OutputFormat = "tree"
)

// Config is the root configuration structure.
type Config struct {
	Printer  PrinterConfig  `mapstructure:"printer" yaml:"printer"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
}

// PrinterConfig controls the structured-tree and CFG dump output.
type PrinterConfig struct {
	// IndentWidth is loaded, validated and written by `cflow init`, but
	// no command reads it: the structured-tree dump (internal/ir.Dump)
	// always uses a two-space indent unit.
	IndentWidth int `mapstructure:"indent_width" yaml:"indent_width"`

	// ShowLabels is loaded and written by `cflow init`, but no command
	// reads it: the structured-tree dump always prints loop labels.
	ShowLabels bool `mapstructure:"show_labels" yaml:"show_labels"`

	// Format selects "cfg" or "tree" as the default dump for `cflow lower`.
	Format OutputFormat `mapstructure:"format" yaml:"format"`
}

// AnalysisConfig controls lowering behavior.
type AnalysisConfig struct {
	// FailOnError makes `cflow lower` exit non-zero when any file fails
	// to lower. Every file is still processed and each failure printed
	// either way. The MCP tools do not consult it.
	FailOnError bool `mapstructure:"fail_on_error" yaml:"fail_on_error"`

	// CheckReachability re-derives the reachable set independently of
	// the lowering engine's own bookkeeping and reports any mismatch
	// (see internal/cfg.Reachability and SPEC_FULL.md ADD-2).
	CheckReachability bool `mapstructure:"check_reachability" yaml:"check_reachability"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Printer: PrinterConfig{
			IndentWidth: 2,
			ShowLabels:  true,
			Format:      OutputFormatCFG,
		},
		Analysis: AnalysisConfig{
			FailOnError:       true,
			CheckReachability: false,
		},
	}
}

// LoadConfig loads configuration, discovering a config file under
// targetDir if configPath is empty, and falling back to DefaultConfig if
// none is found.
func LoadConfig(configPath, targetDir string) (*Config, error) {
	if configPath == "" {
		configPath = discoverConfigFile(targetDir)
	}
	if configPath == "" {
		return DefaultConfig(), nil
	}
	return loadConfigFromFile(configPath)
}

func loadConfigFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("CFLOW")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, domain.NewConfigError(fmt.Sprintf("failed to read config file %s", configPath), err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, domain.NewConfigError("failed to unmarshal config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.Printer.IndentWidth < 0 {
		return fmt.Errorf("printer.indent_width must be >= 0, got %d", c.Printer.IndentWidth)
	}
	switch c.Printer.Format {
	case OutputFormatCFG, OutputFormatTree:
	default:
		return fmt.Errorf("printer.format must be %q or %q, got %q", OutputFormatCFG, OutputFormatTree, c.Printer.Format)
	}
	return nil
}

var candidateNames = []string{"cflow.toml", ".cflow.toml"}

func discoverConfigFile(targetDir string) string {
	dirs := []string{targetDir, "."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, name := range candidateNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

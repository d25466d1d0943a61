package config

import (
	_ "embed"
	"strings"
	"text/template"
)

//go:embed default_config.toml.tmpl
var defaultConfigTemplate string

// DefaultConfigTOML renders the embedded default-config template against
// DefaultConfig()'s values, for `cflow init` to write out. Grounded on
// the teacher's config.DefaultConfigTOML embedded constant, rendered
// through text/template here instead of being a static string so the
// commented-out defaults in the file always match DefaultConfig().
func DefaultConfigTOML() (string, error) {
	return RenderConfigTOML(DefaultConfig())
}

// RenderConfigTOML renders the embedded template against an arbitrary
// config, used by `cflow init --interactive` to bake wizard choices into
// the generated file.
func RenderConfigTOML(cfg *Config) (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTemplate)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, cfg.templateValues()); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (c *Config) templateValues() map[string]any {
	return map[string]any{
		"IndentWidth":       c.Printer.IndentWidth,
		"ShowLabels":        c.Printer.ShowLabels,
		"Format":            c.Printer.Format,
		"FailOnError":       c.Analysis.FailOnError,
		"CheckReachability": c.Analysis.CheckReachability,
	}
}

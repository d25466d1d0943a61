package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/cflow/internal/config"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// NewInitCmd builds the `cflow init` command, which writes a documented
// default config file, optionally gathered via an interactive wizard.
func NewInitCmd() *cobra.Command {
	var configPath string
	var force bool
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a cflow configuration file",
		Long: `Init creates a cflow.toml configuration file with documented defaults.

Examples:
  # Create cflow.toml in the current directory
  cflow init

  # Overwrite an existing file
  cflow init --force

  # Walk through the settings interactively
  cflow init --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			cfg := config.DefaultConfig()
			if interactive {
				chosen, chosenCfg, err := runInteractiveInit(configPath, cfg)
				if err != nil {
					return err
				}
				path, cfg = chosen, chosenCfg
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("failed to resolve config path: %w", err)
			}
			if _, err := os.Stat(absPath); err == nil && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", absPath)
			}

			content, err := config.RenderConfigTOML(cfg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
				return fmt.Errorf("failed to write configuration file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", absPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Run 'cflow lower <path>' to use it.\n")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "cflow.toml", "Configuration file path")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration file")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Interactive setup wizard")

	return cmd
}

func runInteractiveInit(defaultPath string, base *config.Config) (string, *config.Config, error) {
	fmt.Println()
	fmt.Println("cflow Configuration Setup")
	fmt.Println("==========================")
	fmt.Println()

	formatChoices := []struct {
		Label string
		Value config.OutputFormat
	}{
		{"CFG (control flow graph)", config.OutputFormatCFG},
		{"Tree (structured program tree)", config.OutputFormatTree},
	}
	formatTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }}",
		Inactive: "   {{ .Label | white }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}
	formatPrompt := promptui.Select{
		Label:     "Default dump format for `cflow lower`",
		Items:     formatChoices,
		Templates: formatTemplates,
	}
	formatIdx, _, err := formatPrompt.Run()
	if err != nil {
		return "", nil, fmt.Errorf("format selection cancelled: %w", err)
	}
	base.Printer.Format = formatChoices[formatIdx].Value

	failPrompt := promptui.Select{
		Label: "Fail the whole run if one file fails to lower?",
		Items: []string{"Yes (recommended)", "No, skip and continue"},
	}
	failIdx, _, err := failPrompt.Run()
	if err != nil {
		return "", nil, fmt.Errorf("selection cancelled: %w", err)
	}
	base.Analysis.FailOnError = failIdx == 0

	pathPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultPath,
	}
	path, err := pathPrompt.Run()
	if err != nil {
		return "", nil, fmt.Errorf("output path input cancelled: %w", err)
	}
	if path == "" {
		path = defaultPath
	}
	return path, base, nil
}

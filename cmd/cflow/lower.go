package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/cflow/app"
	"github.com/ludo-technologies/cflow/internal/config"
	"github.com/ludo-technologies/cflow/service"
	"github.com/spf13/cobra"
)

// NewLowerCmd builds the `cflow lower` command: lowers one or more
// program description files (or every *.cflow.yaml under a directory,
// ADD-2's batch mode) to their control flow graph.
func NewLowerCmd() *cobra.Command {
	var outputPath string
	var checkReachability bool
	var failOnError bool

	cmd := &cobra.Command{
		Use:   "lower <path>...",
		Short: "Lower program descriptions to control flow graphs",
		Long: `Lower reads one or more program description files (see the project's
YAML program format) and prints each one's control flow graph, or its
structured tree when the config file sets printer.format to "tree".

A directory argument is walked for every *.cflow.yaml file it contains,
respecting .gitignore.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLower(cmd, args, outputPath, checkReachability, failOnError)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write output to this file instead of stdout")
	cmd.Flags().BoolVar(&checkReachability, "check-reachability", false, "Cross-check the engine's reachable set against an independent graph walk")
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", true, "Exit non-zero if any file fails to lower")

	return cmd
}

func runLower(cmd *cobra.Command, paths []string, outputPath string, checkReachability, failOnError bool) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(cfgPath, ".")
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("check-reachability") {
		cfg.Analysis.CheckReachability = checkReachability
	}
	if cmd.Flags().Changed("fail-on-error") {
		cfg.Analysis.FailOnError = failOnError
	}

	uc := app.NewLowerUseCase(service.NewProgramLoader(), service.NewOutputWriter(os.Stderr), os.Stderr)
	results, err := uc.Execute(context.Background(), app.Request{
		Paths:             paths,
		Format:            cfg.Printer.Format,
		CheckReachability: cfg.Analysis.CheckReachability,
	})
	if err != nil {
		return err
	}

	return writeResults(cmd, results, outputPath, cfg.Analysis.FailOnError)
}

func writeResults(cmd *cobra.Command, results []app.Result, outputPath string, failOnError bool) error {
	out := cmd.OutOrStdout()
	writer := service.NewOutputWriter(cmd.ErrOrStderr())

	var failed int
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, r.Err)
			failed++
			continue
		}
		if len(results) > 1 {
			fmt.Fprintf(out, "=== %s ===\n", r.Path)
		}
		text := r.Output
		if err := writer.Write(out, perFileOutputPath(outputPath, r.Path, len(results)), func(w io.Writer) error {
			_, werr := io.WriteString(w, text)
			return werr
		}); err != nil {
			return err
		}
	}

	if failed > 0 && failOnError {
		return fmt.Errorf("%d of %d files failed to lower", failed, len(results))
	}
	return nil
}

func perFileOutputPath(outputPath, srcPath string, total int) string {
	if outputPath == "" || total == 1 {
		return outputPath
	}
	// Batch mode with an explicit -o: disambiguate by source file name.
	return fmt.Sprintf("%s.%s", outputPath, filepath.Base(srcPath))
}

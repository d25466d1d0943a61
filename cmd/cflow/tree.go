package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ludo-technologies/cflow/app"
	"github.com/ludo-technologies/cflow/internal/config"
	"github.com/ludo-technologies/cflow/service"
	"github.com/spf13/cobra"
)

// NewTreeCmd builds the `cflow tree` command: prints the structured-tree
// form of one or more program descriptions, without lowering.
func NewTreeCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "tree <path>...",
		Short: "Print the structured program tree",
		Long:  `Tree reads one or more program description files and prints each one's structured tree (the pre-lowering form), the same pseudo-source dump the builder API exposes.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := app.NewLowerUseCase(service.NewProgramLoader(), service.NewOutputWriter(os.Stderr), os.Stderr)
			results, err := uc.Execute(context.Background(), app.Request{
				Paths:  args,
				Format: config.OutputFormatTree,
			})
			if err != nil {
				return err
			}

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
				if werr := writer.Write(out, perFileOutputPath(outputPath, r.Path, len(results)), func(w io.Writer) error {
					_, werr := io.WriteString(w, text)
					return werr
				}); werr != nil {
					return werr
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed to build", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write output to this file instead of stdout")
	return cmd
}

package main

import (
	"os"

	"github.com/ludo-technologies/cflow/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cflow",
	Short: "A control flow graph lowering tool",
	Long: `cflow lowers a structured program description (mutations, conditions,
if/if-else, while/do-while, break/continue/return) into its control flow
graph, and prints either form as readable text.

Features:
  • deterministic CFG lowering from a structured program tree
  • labelled break/continue, resolved by loop identity not text
  • structured-tree and CFG text dumps
  • batch mode over a directory of program description files`,
	Version: version.Short(),
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewLowerCmd())
	rootCmd.AddCommand(NewTreeCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

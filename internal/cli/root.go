// Package cli implements the cvtailor command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	outputFile string
)

var rootCmd = &cobra.Command{
	Use:   "cvtailor",
	Short: "Convert, analyze, and enhance CVs with AI assistance",
	Long: `cvtailor turns raw CV documents into structured Harvard-format
resumes and runs AI-assisted analysis, job matching, and enhancement
over them. It runs either as a one-shot CLI or as an HTTP service.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "write output to file instead of stdout")

	rootCmd.AddCommand(
		serveCmd,
		analyzeCmd,
		matchCmd,
		convertCmd,
		enhanceCmd,
		extractCmd,
		versionCmd,
	)
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

package cli

import (
	"github.com/spf13/cobra"

	"cvtailor/internal/common"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <cv-file>",
	Short: "Review a CV and report strengths, weaknesses, and suggestions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfigAndLogger()
		if err != nil {
			return err
		}
		app, err := buildApp(cmd.Context(), cfg, logger, nil)
		if err != nil {
			return err
		}

		cvText, err := readCVText(args[0])
		if err != nil {
			return err
		}

		report, err := app.svc.AnalyzeCV(cmd.Context(), cvText)
		if err != nil {
			return err
		}
		return common.WriteJSON(outputFile, report)
	},
}

package cli

import (
	"github.com/spf13/cobra"

	"cvtailor/internal/common"
)

var convertCmd = &cobra.Command{
	Use:   "convert <cv-file>",
	Short: "Convert a CV into a structured Harvard-format resume",
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

		record, err := app.svc.ConvertCV(cmd.Context(), cvText)
		if err != nil {
			return err
		}
		return common.WriteJSON(outputFile, record)
	},
}

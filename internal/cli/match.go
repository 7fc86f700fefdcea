package cli

import (
	"github.com/spf13/cobra"

	"cvtailor/internal/common"
	apperrors "cvtailor/internal/errors"
)

var (
	matchJobText string
	matchJobFile string
)

var matchCmd = &cobra.Command{
	Use:   "match <cv-file>",
	Short: "Score a CV against a job description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobDescription := matchJobText
		if jobDescription == "" && matchJobFile != "" {
			data, err := common.ReadInput(matchJobFile)
			if err != nil {
				return err
			}
			jobDescription = string(data)
		}
		if jobDescription == "" {
			return apperrors.NewValidationError(
				apperrors.ErrCodeInvalidRequest,
				"a job description is required, pass --job or --job-file",
				nil,
			)
		}

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

		report, err := app.svc.MatchJob(cmd.Context(), cvText, jobDescription)
		if err != nil {
			return err
		}
		return common.WriteJSON(outputFile, report)
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchJobText, "job", "", "job description text")
	matchCmd.Flags().StringVar(&matchJobFile, "job-file", "", "file containing the job description")
}

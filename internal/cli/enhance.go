package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"cvtailor/internal/common"
	apperrors "cvtailor/internal/errors"
	"cvtailor/internal/types"
)

var (
	enhanceSuggestions     []string
	enhanceSuggestionsFile string
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance <resume-json-file>",
	Short: "Apply improvement suggestions to a structured resume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := common.ReadInput(args[0])
		if err != nil {
			return err
		}
		var record types.ResumeRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return apperrors.NewValidationError(
				apperrors.ErrCodeInvalidRequest,
				"input is not a valid resume JSON document",
				err,
			)
		}

		suggestions := enhanceSuggestions
		if enhanceSuggestionsFile != "" {
			fileData, err := common.ReadInput(enhanceSuggestionsFile)
			if err != nil {
				return err
			}
			for _, line := range strings.Split(string(fileData), "\n") {
				if line = strings.TrimSpace(line); line != "" {
					suggestions = append(suggestions, line)
				}
			}
		}
		if len(suggestions) == 0 {
			return apperrors.NewValidationError(
				apperrors.ErrCodeInvalidRequest,
				"at least one suggestion is required, pass --suggestion or --suggestions-file",
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

		result, err := app.svc.EnhanceCV(cmd.Context(), record, suggestions)
		if err != nil {
			return err
		}
		return common.WriteJSON(outputFile, result)
	},
}

func init() {
	enhanceCmd.Flags().StringArrayVarP(&enhanceSuggestions, "suggestion", "s", nil, "suggestion to apply (repeatable)")
	enhanceCmd.Flags().StringVar(&enhanceSuggestionsFile, "suggestions-file", "", "file with one suggestion per line")
}

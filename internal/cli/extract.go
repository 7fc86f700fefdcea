package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "cvtailor/internal/errors"
	"cvtailor/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract <pdf-file>",
	Short: "Extract plain text from a PDF document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := extract.TextFromFile(args[0])
		if err != nil {
			return err
		}

		if outputFile == "" {
			fmt.Println(text)
			return nil
		}
		if err := os.WriteFile(outputFile, []byte(text), 0o644); err != nil {
			return apperrors.NewIOError(
				apperrors.ErrCodeFileNotReadable,
				"failed to write output file",
				err,
			).WithContext("path", outputFile)
		}
		return nil
	},
}

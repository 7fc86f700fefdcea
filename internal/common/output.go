package common

import (
	"encoding/json"
	"fmt"
	"os"

	apperrors "cvtailor/internal/errors"
)

// WriteJSON renders v as indented JSON to the given file, or to stdout
// when path is empty.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.NewInternalError(
			apperrors.ErrCodeInvalidRequest,
			"failed to encode output",
			err,
		)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return apperrors.NewIOError(
			apperrors.ErrCodeFileNotReadable,
			"failed to write output file",
			err,
		).WithContext("path", path)
	}
	return nil
}

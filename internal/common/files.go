// Package common holds small file and output helpers shared by the CLI
// commands and the HTTP handlers.
package common

import (
	"io"
	"os"

	apperrors "cvtailor/internal/errors"
)

// ReadInput reads a file, or stdin when path is "-".
func ReadInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, apperrors.NewIOError(
				apperrors.ErrCodeFileNotReadable,
				"failed to read stdin",
				err,
			)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewIOError(
				apperrors.ErrCodeFileNotFound,
				"input file not found",
				err,
			).WithContext("path", path)
		}
		return nil, apperrors.NewIOError(
			apperrors.ErrCodeFileNotReadable,
			"failed to read input file",
			err,
		).WithContext("path", path)
	}
	return data, nil
}

// SpoolToTemp writes an upload stream to a request-scoped temp file and
// returns its path with a cleanup func. Callers must defer cleanup on
// every path so no spooled upload outlives its request.
func SpoolToTemp(src io.Reader, pattern string) (string, func(), error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, apperrors.NewIOError(
			apperrors.ErrCodeFileNotReadable,
			"failed to create temp file",
			err,
		)
	}

	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	if _, err := io.Copy(tmp, src); err != nil {
		cleanup()
		return "", nil, apperrors.NewIOError(
			apperrors.ErrCodeFileNotReadable,
			"failed to spool upload",
			err,
		)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, apperrors.NewIOError(
			apperrors.ErrCodeFileNotReadable,
			"failed to finish spooling upload",
			err,
		)
	}

	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

// Package extract turns uploaded CV documents into plain text.
package extract

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	apperrors "cvtailor/internal/errors"
)

// Text extracts the textual content of a PDF document. Pages are
// concatenated in order with a line break between them. Empty input is
// rejected before any parsing is attempted.
func Text(data []byte) (text string, err error) {
	// The pdf library panics on some corrupt inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = apperrors.NewDocumentError(
				apperrors.ErrCodeDocumentParse,
				"failed to parse PDF document",
				fmt.Errorf("parser panic: %v", r),
			)
		}
	}()

	if len(data) == 0 {
		return "", apperrors.NewValidationError(
			apperrors.ErrCodeEmptyInput,
			"document is empty",
			nil,
		)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.NewDocumentError(
			apperrors.ErrCodeDocumentParse,
			"failed to parse PDF document",
			err,
		)
	}

	var pages []string
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, pageErr := page.GetPlainText(fonts)
		if pageErr != nil {
			return "", apperrors.NewDocumentError(
				apperrors.ErrCodeDocumentParse,
				"failed to extract page text",
				pageErr,
			).WithContext("page", i)
		}
		pages = append(pages, pageText)
	}

	return strings.Join(pages, "\n"), nil
}

// TextFromFile reads a PDF from disk and extracts its text.
func TextFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NewIOError(
				apperrors.ErrCodeFileNotFound,
				"document file not found",
				err,
			).WithContext("path", path)
		}
		return "", apperrors.NewIOError(
			apperrors.ErrCodeFileNotReadable,
			"failed to read document file",
			err,
		).WithContext("path", path)
	}
	return Text(data)
}

package cli

import (
	"path/filepath"
	"strings"

	"cvtailor/internal/common"
	"cvtailor/internal/extract"
)

// readCVText loads CV content from a file. PDF files go through the
// document extractor; anything else is read as plain text.
func readCVText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extract.TextFromFile(path)
	}
	data, err := common.ReadInput(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

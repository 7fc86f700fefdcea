package ai

import (
	"regexp"
	"strings"

	"cvtailor/internal/types"
)

// changesSummaryMarker introduces the optional change list the
// enhancement prompt asks the model to append after the JSON document.
const changesSummaryMarker = "CHANGES_SUMMARY:"

var changeLinePattern = regexp.MustCompile(`Section:\s*([^,]+),\s*Field:\s*([^,]+),\s*Change:\s*(.+)`)

// splitChangesSummary separates the JSON portion of an enhancement
// response from the trailing change summary, if one is present.
func splitChangesSummary(raw string) (jsonPart, summary string) {
	idx := strings.Index(raw, changesSummaryMarker)
	if idx < 0 {
		return strings.TrimSpace(raw), ""
	}
	return strings.TrimSpace(raw[:idx]), raw[idx:]
}

// parseChanges scans model output for the change summary and extracts
// one ChangeRecord per well-formed dash line. Lines that do not match
// are skipped; a missing marker yields an empty list.
func parseChanges(raw string) []types.ChangeRecord {
	changes := []types.ChangeRecord{}

	idx := strings.Index(raw, changesSummaryMarker)
	if idx < 0 {
		return changes
	}

	for _, line := range strings.Split(raw[idx:], "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		match := changeLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		description := strings.TrimSpace(match[3])
		changes = append(changes, types.ChangeRecord{
			Section:     strings.TrimSpace(match[1]),
			Field:       strings.TrimSpace(match[2]),
			OldValue:    "Original content",
			NewValue:    "Enhanced content",
			ChangeType:  inferChangeType(description),
			Description: description,
		})
	}
	return changes
}

// inferChangeType classifies a change description by keyword.
func inferChangeType(description string) string {
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(desc, "action verb") || strings.Contains(desc, "improved"):
		return types.ChangeTypeEnhanced
	case strings.Contains(desc, "added") || strings.Contains(desc, "quantifiable"):
		return types.ChangeTypeAdded
	case strings.Contains(desc, "keyword") || strings.Contains(desc, "terminology"):
		return types.ChangeTypeOptimized
	case strings.Contains(desc, "strengthen") || strings.Contains(desc, "impact"):
		return types.ChangeTypeImproved
	default:
		return types.ChangeTypeEnhanced
	}
}

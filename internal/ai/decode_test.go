package ai

import (
	"encoding/json"
	"testing"

	apperrors "cvtailor/internal/errors"
	"cvtailor/internal/types"
)

var personalInfoSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"personalInfo": {
			"type": "object",
			"properties": {
				"name": {"type": "string", "minLength": 1},
				"email": {"type": "string", "format": "email", "minLength": 1}
			},
			"required": ["name", "email"]
		}
	},
	"required": ["personalInfo"]
}`)

func TestDecodeStructuredValid(t *testing.T) {
	raw := `{
		"personalInfo": {"name": "Jane Doe", "email": "jane.doe@example.com"},
		"experience": [{"company": "Acme", "position": "Engineer"}]
	}`

	record, err := decodeStructured[types.ResumeRecord](raw, personalInfoSchema)
	if err != nil {
		t.Fatalf("decodeStructured: %v", err)
	}
	if record.PersonalInfo.Name != "Jane Doe" {
		t.Errorf("name = %q", record.PersonalInfo.Name)
	}
	if record.PersonalInfo.Email != "jane.doe@example.com" {
		t.Errorf("email = %q", record.PersonalInfo.Email)
	}
	// Normalize runs as part of decoding.
	if record.Experience[0].Achievements == nil {
		t.Error("nested lists should be defaulted to empty slices")
	}
	if record.Skills.Technical == nil || record.Projects == nil {
		t.Error("absent lists should be defaulted to empty slices")
	}
}

func TestDecodeStructuredMissingRequiredField(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing email", `{"personalInfo": {"name": "Jane Doe"}}`},
		{"empty email", `{"personalInfo": {"name": "Jane Doe", "email": ""}}`},
		{"missing personalInfo", `{"education": []}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeStructured[types.ResumeRecord](tc.raw, personalInfoSchema)
			if err == nil {
				t.Fatal("expected validation failure")
			}
			if !apperrors.HasCode(err, apperrors.ErrCodeMalformedResponse) {
				t.Errorf("expected MALFORMED_RESPONSE, got %v", err)
			}
		})
	}
}

func TestDecodeStructuredCaseInsensitiveKeys(t *testing.T) {
	raw := `{"PersonalInfo": {"Name": "Jane Doe", "Email": "jane.doe@example.com"}}`

	record, err := decodeStructured[types.ResumeRecord](raw, personalInfoSchema)
	if err != nil {
		t.Fatalf("case-variant keys should decode, got %v", err)
	}
	if record.PersonalInfo.Name != "Jane Doe" {
		t.Errorf("name = %q", record.PersonalInfo.Name)
	}
	if record.PersonalInfo.Email != "jane.doe@example.com" {
		t.Errorf("email = %q", record.PersonalInfo.Email)
	}

	// Casing does not relax required-field enforcement.
	_, err = decodeStructured[types.ResumeRecord](`{"PersonalInfo": {"Name": "Jane Doe"}}`, personalInfoSchema)
	if !apperrors.HasCode(err, apperrors.ErrCodeMalformedResponse) {
		t.Errorf("expected MALFORMED_RESPONSE for missing email, got %v", err)
	}
}

func TestDecodeStructuredInvalidJSON(t *testing.T) {
	_, err := decodeStructured[types.ResumeRecord]("I could not process that request.", personalInfoSchema)
	if !apperrors.HasCode(err, apperrors.ErrCodeMalformedResponse) {
		t.Errorf("expected MALFORMED_RESPONSE for non-JSON text, got %v", err)
	}
}

func TestDecodeStructuredReport(t *testing.T) {
	schema := json.RawMessage(`{
		"type": "object",
		"properties": {
			"matchScore": {"type": "integer"},
			"summary": {"type": "string"}
		},
		"required": ["matchScore", "summary"]
	}`)

	report, err := decodeStructured[types.JobMatchReport](`{"matchScore": 72, "summary": "solid fit"}`, schema)
	if err != nil {
		t.Fatalf("decodeStructured: %v", err)
	}
	if report.MatchScore != 72 || report.Summary != "solid fit" {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.MissingKeywords == nil || report.SuggestedImprovements == nil {
		t.Error("report lists should be defaulted to empty slices")
	}
}

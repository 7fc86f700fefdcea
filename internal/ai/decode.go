package ai

import (
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"

	apperrors "cvtailor/internal/errors"
)

// normalizer is implemented by records that default their nil list
// fields after decoding.
type normalizer interface {
	Normalize()
}

// decodeStructured unmarshals raw model output into the target type and
// validates it against the operation's JSON schema. Unmarshal runs
// first because Go's decoder matches field names case-insensitively;
// validation then runs on the re-marshaled canonical record, so casing
// drift in keys is tolerated while missing required fields still fail
// here instead of surfacing later as zero values.
func decodeStructured[Out any](raw string, schema json.RawMessage) (Out, error) {
	var out Out

	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, apperrors.NewAIError(
			apperrors.ErrCodeMalformedResponse,
			"model response is not valid JSON",
			err,
		)
	}

	if n, ok := any(&out).(normalizer); ok {
		n.Normalize()
	}

	canonical, err := json.Marshal(out)
	if err != nil {
		return out, apperrors.NewAIError(
			apperrors.ErrCodeMalformedResponse,
			"failed to canonicalize model response",
			err,
		)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(canonical),
	)
	if err != nil {
		return out, apperrors.NewAIError(
			apperrors.ErrCodeMalformedResponse,
			"schema validation failed",
			err,
		)
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		var zero Out
		return zero, apperrors.NewAIError(
			apperrors.ErrCodeMalformedResponse,
			"model response violates the expected schema",
			nil,
		).WithContext("violations", violations)
	}

	return out, nil
}

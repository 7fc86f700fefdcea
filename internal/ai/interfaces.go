package ai

import (
	"context"
	"encoding/json"
)

// TextGenerator produces model output for a prompt. When schema is
// non-nil the provider is asked to constrain its output to that JSON
// schema and the returned text is expected to be a JSON document.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, schema json.RawMessage) (string, error)
}

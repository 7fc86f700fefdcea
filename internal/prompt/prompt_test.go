package prompt

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "cvtailor/internal/errors"
)

func testLogger(t *testing.T) *apperrors.Logger {
	t.Helper()
	logger, err := apperrors.New("error")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return logger
}

func TestRender(t *testing.T) {
	cases := []struct {
		name     string
		template string
		values   map[string]string
		want     string
	}{
		{
			name:     "single placeholder",
			template: "CV:\n{cvText}",
			values:   map[string]string{"cvText": "Jane Doe"},
			want:     "CV:\nJane Doe",
		},
		{
			name:     "repeated placeholder",
			template: "{name} and {name}",
			values:   map[string]string{"name": "x"},
			want:     "x and x",
		},
		{
			name:     "unresolved placeholder left verbatim",
			template: "has {known} and {unknown}",
			values:   map[string]string{"known": "v"},
			want:     "has v and {unknown}",
		},
		{
			name:     "no values",
			template: "plain text {token}",
			values:   nil,
			want:     "plain text {token}",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Render(tc.template, tc.values); got != tc.want {
				t.Errorf("Render() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLibraryDefaults(t *testing.T) {
	lib, err := NewLibrary(nil, testLogger(t))
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}

	for _, op := range Operations() {
		tmpl, err := lib.Template(op)
		if err != nil {
			t.Errorf("Template(%q): %v", op, err)
		}
		if strings.TrimSpace(tmpl) == "" {
			t.Errorf("Template(%q) is empty", op)
		}
		schema, err := lib.Schema(op)
		if err != nil {
			t.Errorf("Schema(%q): %v", op, err)
		}
		if !json.Valid(schema) {
			t.Errorf("Schema(%q) is not valid JSON", op)
		}
	}

	if _, err := lib.Template("no-such-op"); !apperrors.HasCode(err, apperrors.ErrCodeUnknownTemplate) {
		t.Errorf("expected UNKNOWN_TEMPLATE for bad operation, got %v", err)
	}
}

func TestLibraryRenderUsesOperationTemplate(t *testing.T) {
	lib, err := NewLibrary(nil, testLogger(t))
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	rendered, err := lib.Render(OpCVConversion, map[string]string{"cvText": "MARKER-12345"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(rendered, "MARKER-12345") {
		t.Error("rendered prompt should contain the substituted CV text")
	}
	if strings.Contains(rendered, "{cvText}") {
		t.Error("cvText placeholder should have been substituted")
	}
}

func TestLibraryFileOverride(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "conv.txt")
	schemaPath := filepath.Join(dir, "conv.schema.json")
	if err := os.WriteFile(tmplPath, []byte("custom template {cvText}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(schemaPath, []byte(`{"type":"object"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	lib, err := NewLibrary(map[string]Override{
		OpCVConversion: {TemplateFile: tmplPath, SchemaFile: schemaPath},
	}, testLogger(t))
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}

	tmpl, err := lib.Template(OpCVConversion)
	if err != nil {
		t.Fatal(err)
	}
	if tmpl != "custom template {cvText}" {
		t.Errorf("override template not applied, got %q", tmpl)
	}

	// Other operations keep their defaults.
	other, err := lib.Template(OpJobMatch)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(other, "{jobDescription}") {
		t.Error("job-match default template should be untouched")
	}
}

func TestLibraryOverrideErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")
	_, err := NewLibrary(map[string]Override{
		OpCVSuggestion: {TemplateFile: missing},
	}, testLogger(t))
	if !apperrors.HasCode(err, apperrors.ErrCodeFileNotReadable) {
		t.Errorf("expected FILE_NOT_READABLE, got %v", err)
	}

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.schema.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err = NewLibrary(map[string]Override{
		OpCVSuggestion: {SchemaFile: bad},
	}, testLogger(t))
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG for bad schema JSON, got %v", err)
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewAIError(ErrCodeRemoteRejected, "rejected", nil)
	if got := err.Error(); got != "REMOTE_REJECTED: rejected" {
		t.Errorf("Error() = %q", got)
	}

	cause := stderrors.New("boom")
	wrapped := NewNetworkError(ErrCodeServiceUnavailable, "request failed", cause)
	if got := wrapped.Error(); got != "SERVICE_UNAVAILABLE: request failed (caused by: boom)" {
		t.Errorf("Error() = %q", got)
	}
	if !stderrors.Is(wrapped, cause) {
		t.Error("Unwrap should expose the cause")
	}
}

func TestHasCode(t *testing.T) {
	err := NewValidationError(ErrCodeEmptyInput, "empty", nil)
	if !HasCode(err, ErrCodeEmptyInput) {
		t.Error("HasCode should match the error's code")
	}
	if HasCode(err, ErrCodeDocumentParse) {
		t.Error("HasCode should not match a different code")
	}

	// Works through wrapping.
	wrapped := fmt.Errorf("context: %w", err)
	if !HasCode(wrapped, ErrCodeEmptyInput) {
		t.Error("HasCode should see through fmt.Errorf wrapping")
	}

	if HasCode(stderrors.New("plain"), ErrCodeEmptyInput) {
		t.Error("plain errors carry no code")
	}
	if CodeOf(stderrors.New("plain")) != "" {
		t.Error("CodeOf for plain errors should be empty")
	}
}

func TestWithContext(t *testing.T) {
	err := NewIOError(ErrCodeFileNotFound, "missing", nil).
		WithContext("path", "/tmp/x").
		WithContext("attempt", 2)
	if err.Context["path"] != "/tmp/x" || err.Context["attempt"] != 2 {
		t.Errorf("context = %v", err.Context)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := New(level); err != nil {
			t.Errorf("New(%q): %v", level, err)
		}
	}
	if _, err := New("loud"); err == nil {
		t.Error("unknown level should be rejected")
	}
}

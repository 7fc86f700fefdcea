// Package prompt holds the operation prompt templates and their JSON
// response schemas. Defaults are compiled in; each operation can be
// overridden by files named in the configuration.
package prompt

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	apperrors "cvtailor/internal/errors"
)

// Operation names. These key templates, schemas, and per-operation config.
const (
	OpCVSuggestion  = "cv-suggestion"
	OpJobMatch      = "job-match"
	OpCVConversion  = "cv-conversion"
	OpCVEnhancement = "cv-enhancement"
)

// Operations lists every supported operation name.
func Operations() []string {
	return []string{OpCVSuggestion, OpJobMatch, OpCVConversion, OpCVEnhancement}
}

//go:embed assets/*.txt assets/*.schema.json
var assets embed.FS

// Override points an operation at replacement template and/or schema files.
// Empty paths keep the compiled-in default.
type Override struct {
	TemplateFile string
	SchemaFile   string
}

// Library resolves templates and schemas per operation, file overrides
// taking priority over embedded defaults. Safe for concurrent use.
type Library struct {
	mu        sync.RWMutex
	templates map[string]string
	schemas   map[string]json.RawMessage
	overrides map[string]Override
	logger    *apperrors.Logger
}

// NewLibrary loads the embedded defaults and applies any file overrides.
func NewLibrary(overrides map[string]Override, logger *apperrors.Logger) (*Library, error) {
	l := &Library{
		templates: make(map[string]string),
		schemas:   make(map[string]json.RawMessage),
		overrides: overrides,
		logger:    logger,
	}
	if l.overrides == nil {
		l.overrides = map[string]Override{}
	}

	for _, op := range Operations() {
		tmpl, err := assets.ReadFile(fmt.Sprintf("assets/%s.txt", op))
		if err != nil {
			return nil, apperrors.NewInternalError(
				apperrors.ErrCodeUnknownTemplate,
				"missing embedded template",
				err,
			).WithContext("operation", op)
		}
		schema, err := assets.ReadFile(fmt.Sprintf("assets/%s.schema.json", op))
		if err != nil {
			return nil, apperrors.NewInternalError(
				apperrors.ErrCodeUnknownTemplate,
				"missing embedded schema",
				err,
			).WithContext("operation", op)
		}
		l.templates[op] = string(tmpl)
		l.schemas[op] = json.RawMessage(schema)
	}

	if err := l.reloadOverrides(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Library) reloadOverrides() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for op, ov := range l.overrides {
		if ov.TemplateFile != "" {
			data, err := os.ReadFile(ov.TemplateFile)
			if err != nil {
				return apperrors.NewIOError(
					apperrors.ErrCodeFileNotReadable,
					"failed to read template override",
					err,
				).WithContext("operation", op).WithContext("path", ov.TemplateFile)
			}
			l.templates[op] = string(data)
		}
		if ov.SchemaFile != "" {
			data, err := os.ReadFile(ov.SchemaFile)
			if err != nil {
				return apperrors.NewIOError(
					apperrors.ErrCodeFileNotReadable,
					"failed to read schema override",
					err,
				).WithContext("operation", op).WithContext("path", ov.SchemaFile)
			}
			if !json.Valid(data) {
				return apperrors.NewConfigError(
					apperrors.ErrCodeInvalidConfig,
					"schema override is not valid JSON",
					nil,
				).WithContext("operation", op).WithContext("path", ov.SchemaFile)
			}
			l.schemas[op] = json.RawMessage(data)
		}
	}
	return nil
}

// Template returns the prompt template for an operation.
func (l *Library) Template(operation string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tmpl, ok := l.templates[operation]
	if !ok {
		return "", apperrors.NewValidationError(
			apperrors.ErrCodeUnknownTemplate,
			"unknown operation",
			nil,
		).WithContext("operation", operation)
	}
	return tmpl, nil
}

// Schema returns the JSON response schema for an operation.
func (l *Library) Schema(operation string) (json.RawMessage, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	schema, ok := l.schemas[operation]
	if !ok {
		return nil, apperrors.NewValidationError(
			apperrors.ErrCodeUnknownTemplate,
			"unknown operation",
			nil,
		).WithContext("operation", operation)
	}
	return schema, nil
}

// Render resolves the operation's template and substitutes placeholders.
func (l *Library) Render(operation string, values map[string]string) (string, error) {
	tmpl, err := l.Template(operation)
	if err != nil {
		return "", err
	}
	return Render(tmpl, values), nil
}

// Render replaces every {key} token with its value. Tokens without a
// value are left in place so downstream prompts degrade visibly rather
// than silently.
func Render(template string, values map[string]string) string {
	out := template
	for key, value := range values {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}

// Watch reloads override files when they change, until ctx is done.
// Operations without override files are unaffected.
func (l *Library) Watch(ctx context.Context) error {
	dirs := make(map[string]bool)
	files := make(map[string]bool)
	for _, ov := range l.overrides {
		for _, path := range []string{ov.TemplateFile, ov.SchemaFile} {
			if path == "" {
				continue
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				continue
			}
			files[abs] = true
			dirs[filepath.Dir(abs)] = true
		}
	}
	if len(files) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return apperrors.NewInternalError(
			apperrors.ErrCodeInvalidConfig,
			"failed to create override watcher",
			err,
		)
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return apperrors.NewIOError(
				apperrors.ErrCodeFileNotReadable,
				"failed to watch override directory",
				err,
			).WithContext("dir", dir)
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil || !files[abs] {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := l.reloadOverrides(); err != nil {
					l.logger.LogError(err, "prompt override reload failed", "file", abs)
					continue
				}
				l.logger.Info("prompt overrides reloaded", "file", abs)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("prompt override watcher error", "error", err.Error())
			}
		}
	}()
	return nil
}

package ai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "cvtailor/internal/errors"
	"cvtailor/internal/observability"
	"cvtailor/internal/prompt"
	"cvtailor/internal/types"
)

// Service orchestrates the four CV operations: render the operation's
// prompt, call the model, and decode the schema-constrained response.
type Service struct {
	generator TextGenerator
	perOp     map[string]TextGenerator
	library   *prompt.Library
	logger    *apperrors.Logger
	metrics   *observability.Metrics
	tracer    trace.Tracer
}

func NewService(generator TextGenerator, library *prompt.Library, logger *apperrors.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		generator: generator,
		library:   library,
		logger:    logger,
		metrics:   metrics,
		tracer:    otel.Tracer("cvtailor/ai"),
	}
}

// WithOperationGenerator routes one operation to a dedicated generator,
// typically a client built from that operation's model overrides.
func (s *Service) WithOperationGenerator(operation string, g TextGenerator) *Service {
	if s.perOp == nil {
		s.perOp = make(map[string]TextGenerator)
	}
	s.perOp[operation] = g
	return s
}

func (s *Service) generatorFor(operation string) TextGenerator {
	if g, ok := s.perOp[operation]; ok {
		return g
	}
	return s.generator
}

// runStructured is the shared render, generate, decode pipeline. The
// raw model text is returned alongside the decoded value so callers can
// run secondary parsers over it.
func runStructured[Out any](ctx context.Context, s *Service, operation string, values map[string]string) (Out, string, error) {
	var zero Out

	ctx, span := s.tracer.Start(ctx, "ai."+operation,
		trace.WithAttributes(attribute.String("operation", operation)))
	defer span.End()

	rendered, err := s.library.Render(operation, values)
	if err != nil {
		span.SetStatus(otelcodes.Error, apperrors.CodeOf(err))
		return zero, "", err
	}
	schema, err := s.library.Schema(operation)
	if err != nil {
		span.SetStatus(otelcodes.Error, apperrors.CodeOf(err))
		return zero, "", err
	}

	start := time.Now()
	raw, err := s.generatorFor(operation).Generate(ctx, rendered, schema)
	s.metrics.RecordAIRequest(ctx, operation, time.Since(start), apperrors.CodeOf(err))
	if err != nil {
		span.SetStatus(otelcodes.Error, apperrors.CodeOf(err))
		s.metrics.RecordOperation(ctx, operation, false)
		return zero, "", err
	}

	jsonPart, _ := splitChangesSummary(raw)
	out, err := decodeStructured[Out](jsonPart, schema)
	if err != nil {
		span.SetStatus(otelcodes.Error, apperrors.CodeOf(err))
		s.metrics.RecordOperation(ctx, operation, false)
		s.logger.LogError(err, "model response rejected",
			"operation", operation,
			"raw_response", raw,
		)
		return zero, "", err
	}

	s.metrics.RecordOperation(ctx, operation, true)
	return out, raw, nil
}

// AnalyzeCV reviews a CV and returns structured strengths, weaknesses,
// and per-section suggestions.
func (s *Service) AnalyzeCV(ctx context.Context, cvText string) (types.AnalysisReport, error) {
	report, _, err := runStructured[types.AnalysisReport](ctx, s, prompt.OpCVSuggestion, map[string]string{
		"cvText": cvText,
	})
	return report, err
}

// MatchJob scores a CV against a job description.
func (s *Service) MatchJob(ctx context.Context, cvText, jobDescription string) (types.JobMatchReport, error) {
	report, _, err := runStructured[types.JobMatchReport](ctx, s, prompt.OpJobMatch, map[string]string{
		"cvText":         cvText,
		"jobDescription": jobDescription,
	})
	return report, err
}

// ConvertCV turns raw CV text into a structured Harvard-format record.
// Blank input short-circuits to an empty record without calling the
// model.
func (s *Service) ConvertCV(ctx context.Context, cvText string) (types.ResumeRecord, error) {
	if strings.TrimSpace(cvText) == "" {
		return types.NewResumeRecord(), nil
	}
	record, _, err := runStructured[types.ResumeRecord](ctx, s, prompt.OpCVConversion, map[string]string{
		"cvText": cvText,
	})
	return record, err
}

// EnhanceCV applies improvement suggestions to a structured record and
// reports the individual changes the model declared. The input record
// is never modified.
func (s *Service) EnhanceCV(ctx context.Context, record types.ResumeRecord, suggestions []string) (types.EnhanceResult, error) {
	cvJSON, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return types.EnhanceResult{}, apperrors.NewInternalError(
			apperrors.ErrCodeInvalidRequest,
			"failed to serialize resume for enhancement",
			err,
		)
	}

	lines := make([]string, len(suggestions))
	for i, s := range suggestions {
		lines[i] = "- " + s
	}

	enhanced, raw, err := runStructured[types.ResumeRecord](ctx, s, prompt.OpCVEnhancement, map[string]string{
		"cvJson":      string(cvJSON),
		"suggestions": strings.Join(lines, "\n"),
	})
	if err != nil {
		return types.EnhanceResult{}, err
	}

	return types.EnhanceResult{
		CV:      enhanced,
		Changes: parseChanges(raw),
	}, nil
}

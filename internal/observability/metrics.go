package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the custom instruments the pipeline records into. All
// methods are nil-receiver safe so callers never need to guard against
// disabled telemetry.
type Metrics struct {
	aiRequests    metric.Int64Counter
	aiErrors      metric.Int64Counter
	aiDuration    metric.Float64Histogram
	operations    metric.Int64Counter
	extractions   metric.Int64Counter
	rateLimitHits metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.aiRequests, err = meter.Int64Counter("cvtailor_ai_requests_total",
		metric.WithDescription("Outbound model requests by operation"),
	); err != nil {
		return nil, err
	}
	if m.aiErrors, err = meter.Int64Counter("cvtailor_ai_errors_total",
		metric.WithDescription("Failed model requests by operation and error code"),
	); err != nil {
		return nil, err
	}
	if m.aiDuration, err = meter.Float64Histogram("cvtailor_ai_request_duration_seconds",
		metric.WithDescription("Model request latency by operation"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.operations, err = meter.Int64Counter("cvtailor_operations_total",
		metric.WithDescription("Completed pipeline operations by name and outcome"),
	); err != nil {
		return nil, err
	}
	if m.extractions, err = meter.Int64Counter("cvtailor_documents_extracted_total",
		metric.WithDescription("Document text extractions by outcome"),
	); err != nil {
		return nil, err
	}
	if m.rateLimitHits, err = meter.Int64Counter("cvtailor_ratelimit_hits_total",
		metric.WithDescription("Requests rejected by the rate limiter"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordAIRequest records one model call with its latency and outcome.
func (m *Metrics) RecordAIRequest(ctx context.Context, operation string, duration time.Duration, errCode string) {
	if m == nil {
		return
	}
	opAttr := metric.WithAttributes(attribute.String("operation", operation))
	m.aiRequests.Add(ctx, 1, opAttr)
	m.aiDuration.Record(ctx, duration.Seconds(), opAttr)
	if errCode != "" {
		m.aiErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("error_code", errCode),
		))
	}
}

// RecordOperation counts one completed pipeline operation.
func (m *Metrics) RecordOperation(ctx context.Context, operation string, success bool) {
	if m == nil {
		return
	}
	m.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	))
}

// RecordExtraction counts one document text extraction.
func (m *Metrics) RecordExtraction(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.extractions.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordRateLimitHit counts one rate limited request.
func (m *Metrics) RecordRateLimitHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.rateLimitHits.Add(ctx, 1)
}

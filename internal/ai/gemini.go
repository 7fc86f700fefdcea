package ai

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "cvtailor/internal/errors"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 2
	baseRetryDelay    = 500 * time.Millisecond
	maxErrorBodySize  = 2048
)

// GeminiConfig configures the outbound Gemini REST client.
type GeminiConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Timeout     time.Duration
	MaxRetries  int
	Temperature *float64
}

// GeminiClient talks to the Gemini generateContent endpoint. Transient
// transport failures are retried with exponential backoff and jitter;
// remote rejections and empty envelopes are surfaced immediately. All
// calls run through a circuit breaker and an instrumented transport.
type GeminiClient struct {
	cfg        GeminiConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[string]
	logger     *apperrors.Logger
	tracer     trace.Tracer
}

// Request and response envelope for generateContent.
type generateRequest struct {
	Contents         []requestContent  `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      *float64        `json:"temperature,omitempty"`
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []responseCandidate `json:"candidates"`
}

type responseCandidate struct {
	Content *responseContent `json:"content"`
}

type responseContent struct {
	Parts []requestPart `json:"parts"`
}

// NewGeminiClient validates the config and builds the client.
func NewGeminiClient(cfg GeminiConfig, logger *apperrors.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigError(
			apperrors.ErrCodeMissingAPIKey,
			"gemini API key is required",
			nil,
		)
	}
	if cfg.Model == "" {
		return nil, apperrors.NewConfigError(
			apperrors.ErrCodeInvalidConfig,
			"gemini model is required",
			nil,
		)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}

	return &GeminiClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: newCircuitBreaker("gemini", logger),
		logger:  logger,
		tracer:  otel.Tracer("cvtailor/ai"),
	}, nil
}

// Generate implements TextGenerator against the Gemini REST API.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, schema json.RawMessage) (string, error) {
	ctx, span := c.tracer.Start(ctx, "gemini.generate",
		trace.WithAttributes(
			attribute.String("gen_ai.request.model", c.cfg.Model),
			attribute.Bool("gen_ai.request.structured", schema != nil),
		))
	defer span.End()

	body, err := c.buildRequestBody(prompt, schema)
	if err != nil {
		span.SetStatus(otelcodes.Error, "request encoding failed")
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(ctx, backoffDelay(attempt)); err != nil {
				return "", apperrors.NewNetworkError(
					apperrors.ErrCodeServiceUnavailable,
					"request cancelled while waiting to retry",
					err,
				)
			}
			c.logger.Warn("retrying gemini request",
				"attempt", attempt,
				"max_retries", c.cfg.MaxRetries,
			)
		}

		text, err := c.breaker.Execute(func() (string, error) {
			return c.doRequest(ctx, body)
		})
		if err == nil {
			span.SetAttributes(attribute.Int("gen_ai.retries", attempt))
			return text, nil
		}

		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			span.SetStatus(otelcodes.Error, "circuit breaker open")
			return "", apperrors.NewNetworkError(
				apperrors.ErrCodeServiceUnavailable,
				"gemini circuit breaker is open",
				err,
			)
		}

		lastErr = err
		if !apperrors.HasCode(err, apperrors.ErrCodeServiceUnavailable) {
			break
		}
	}

	span.SetStatus(otelcodes.Error, apperrors.CodeOf(lastErr))
	return "", lastErr
}

func (c *GeminiClient) buildRequestBody(prompt string, schema json.RawMessage) ([]byte, error) {
	req := generateRequest{
		Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
	}
	if schema != nil || c.cfg.Temperature != nil {
		req.GenerationConfig = &generationConfig{Temperature: c.cfg.Temperature}
		if schema != nil {
			req.GenerationConfig.ResponseMIMEType = "application/json"
			req.GenerationConfig.ResponseSchema = schema
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.NewInternalError(
			apperrors.ErrCodeInvalidRequest,
			"failed to encode gemini request",
			err,
		)
	}
	return body, nil
}

func (c *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/%s:generateContent?key=%s",
		strings.TrimSuffix(c.cfg.BaseURL, "/"),
		c.cfg.Model,
		url.QueryEscape(c.cfg.APIKey),
	)
}

// doRequest performs one HTTP round trip and navigates the response
// envelope. Transport failures map to SERVICE_UNAVAILABLE, non-2xx to
// REMOTE_REJECTED, and a missing envelope link to EMPTY_RESPONSE.
func (c *GeminiClient) doRequest(ctx context.Context, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewInternalError(
			apperrors.ErrCodeInvalidRequest,
			"failed to build gemini request",
			err,
		)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewNetworkError(
			apperrors.ErrCodeServiceUnavailable,
			"gemini request failed",
			err,
		)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewNetworkError(
			apperrors.ErrCodeServiceUnavailable,
			"failed to read gemini response",
			err,
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := string(respBody)
		if len(detail) > maxErrorBodySize {
			detail = detail[:maxErrorBodySize]
		}
		return "", apperrors.NewAIError(
			apperrors.ErrCodeRemoteRejected,
			"gemini rejected the request",
			nil,
		).WithContext("status", resp.StatusCode).WithContext("body", detail)
	}

	var envelope generateResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return "", apperrors.NewAIError(
			apperrors.ErrCodeEmptyResponse,
			"gemini response envelope is not valid JSON",
			err,
		)
	}

	if len(envelope.Candidates) == 0 {
		return "", emptyResponseError("no candidates in response")
	}
	candidate := envelope.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", emptyResponseError("candidate has no content parts")
	}
	text := candidate.Content.Parts[0].Text
	if text == "" {
		return "", emptyResponseError("candidate text is empty")
	}
	return text, nil
}

func emptyResponseError(message string) *apperrors.AppError {
	return apperrors.NewAIError(apperrors.ErrCodeEmptyResponse, message, nil)
}

// backoffDelay grows exponentially per attempt with up to 50% jitter.
func backoffDelay(attempt int) time.Duration {
	base := baseRetryDelay * time.Duration(1<<(attempt-1))
	jitter := time.Duration(rand.Int64N(int64(base / 2)))
	return base + jitter
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

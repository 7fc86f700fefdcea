package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cvtailor/internal/ai"
	"cvtailor/internal/config"
	apperrors "cvtailor/internal/errors"
	"cvtailor/internal/prompt"
)

type stubGenerator struct {
	calls    int
	response string
	err      error
}

func (s *stubGenerator) Generate(context.Context, string, json.RawMessage) (string, error) {
	s.calls++
	return s.response, s.err
}

const resumeJSON = `{
	"personalInfo": {"name": "Jane Doe", "email": "jane.doe@example.com"},
	"experience": [{"company": "Acme Corp", "position": "Engineer"}]
}`

func newTestServer(t *testing.T, gen ai.TextGenerator, mutate func(*config.ServerConfig)) *Server {
	t.Helper()
	logger, err := apperrors.New("error")
	if err != nil {
		t.Fatal(err)
	}
	library, err := prompt.NewLibrary(nil, logger)
	if err != nil {
		t.Fatal(err)
	}
	svc := ai.NewService(gen, library, logger, nil)

	cfg := config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		MaxRequestSize:  1 << 20,
		ShutdownTimeout: time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, svc, logger, nil)
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v (%s)", err, rec.Body.String())
	}
	return resp.Error
}

func TestConvertBlankText(t *testing.T) {
	gen := &stubGenerator{response: resumeJSON}
	s := newTestServer(t, gen, nil)

	for _, body := range []string{`{"cvText":""}`, `{"cvText":"   \n"}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/cv/convert", strings.NewReader(body))
		rec := doRequest(s, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
		if e := decodeError(t, rec); e.Code != apperrors.ErrCodeEmptyInput {
			t.Errorf("body %s: code = %q", body, e.Code)
		}
	}
	if gen.calls != 0 {
		t.Errorf("blank input must not reach the model, got %d calls", gen.calls)
	}
}

func TestConvertSuccess(t *testing.T) {
	gen := &stubGenerator{response: resumeJSON}
	s := newTestServer(t, gen, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/cv/convert",
		strings.NewReader(`{"cvText":"Jane Doe, engineer at Acme"}`))
	rec := doRequest(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var record map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatal(err)
	}
	info := record["personalInfo"].(map[string]any)
	if info["name"] != "Jane Doe" {
		t.Errorf("name = %v", info["name"])
	}
	if _, ok := record["projects"].([]any); !ok {
		t.Error("absent sections should come back as empty arrays")
	}
}

func TestUpstreamFailureMapsTo502(t *testing.T) {
	gen := &stubGenerator{err: apperrors.NewAIError(
		apperrors.ErrCodeRemoteRejected, "gemini rejected the request", nil,
	).WithContext("status", 400).WithContext("body", "secret upstream detail")}
	s := newTestServer(t, gen, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/cv/convert",
		strings.NewReader(`{"cvText":"some cv"}`))
	rec := doRequest(s, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret upstream detail") {
		t.Error("raw upstream detail must not leak into the response body")
	}
	if e := decodeError(t, rec); e.Message != "AI service request failed" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestEnhanceValidation(t *testing.T) {
	s := newTestServer(t, &stubGenerator{response: resumeJSON}, nil)

	cases := []struct {
		name string
		body string
	}{
		{"missing cv", `{"suggestions":["improve"]}`},
		{"empty suggestions", `{"cv":{"personalInfo":{"name":"J","email":"j@e.com"}},"suggestions":[]}`},
		{"not json", `this is not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/cv/enhance", strings.NewReader(tc.body))
			rec := doRequest(s, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func multipartUpload(t *testing.T, field, filename string, content []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	for k, v := range extra {
		mw.WriteField(k, v)
	}
	mw.Close()
	return buf, mw.FormDataContentType()
}

func TestUploadMalformedDocument(t *testing.T) {
	s := newTestServer(t, &stubGenerator{}, nil)

	body, contentType := multipartUpload(t, "file", "cv.pdf", []byte("not a real pdf"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/cv/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(s, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != apperrors.ErrCodeDocumentParse {
		t.Errorf("code = %q", e.Code)
	}
}

func TestUploadMissingFileField(t *testing.T) {
	s := newTestServer(t, &stubGenerator{}, nil)

	body, contentType := multipartUpload(t, "wrongfield", "cv.pdf", []byte("x"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/analysis/cv-suggestion", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(s, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestExportPDFStub(t *testing.T) {
	s := newTestServer(t, &stubGenerator{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/cv/export-pdf", strings.NewReader(`{}`))
	rec := doRequest(s, req)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}

func TestHealthAndStats(t *testing.T) {
	s := newTestServer(t, &stubGenerator{}, nil)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}

	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("stats status = %d", rec.Code)
	}
	var stats map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if _, ok := stats["uptime_seconds"]; !ok {
		t.Error("stats should report uptime")
	}
}

func TestAPIKeyAuth(t *testing.T) {
	s := newTestServer(t, &stubGenerator{response: resumeJSON}, func(c *config.ServerConfig) {
		c.APIKeys = []string{"valid-key"}
	})

	req := httptest.NewRequest(http.MethodPost, "/api/cv/convert",
		strings.NewReader(`{"cvText":"cv"}`))
	rec := doRequest(s, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/cv/convert",
		strings.NewReader(`{"cvText":"cv"}`))
	req.Header.Set("X-API-Key", "valid-key")
	rec = doRequest(s, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Health stays open.
	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health should not require auth, status = %d", rec.Code)
	}
}

func TestRateLimiting(t *testing.T) {
	s := newTestServer(t, &stubGenerator{response: resumeJSON}, func(c *config.ServerConfig) {
		c.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	})

	first := httptest.NewRequest(http.MethodPost, "/api/cv/convert",
		strings.NewReader(`{"cvText":"cv"}`))
	first.RemoteAddr = "10.0.0.1:1234"
	if rec := doRequest(s, first); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/cv/convert",
		strings.NewReader(`{"cvText":"cv"}`))
	second.RemoteAddr = "10.0.0.1:1234"
	if rec := doRequest(s, second); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}

	// A different client has its own bucket.
	other := httptest.NewRequest(http.MethodPost, "/api/cv/convert",
		strings.NewReader(`{"cvText":"cv"}`))
	other.RemoteAddr = "10.0.0.2:1234"
	if rec := doRequest(s, other); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

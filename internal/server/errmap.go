package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	apperrors "cvtailor/internal/errors"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps pipeline errors to HTTP status codes. Upstream AI
// failures are collapsed to a generic 502 body; the raw detail stays in
// the logs only.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)

	var status int
	message := "request failed"
	switch code {
	case apperrors.ErrCodeEmptyInput, apperrors.ErrCodeInvalidRequest:
		status = http.StatusBadRequest
		message = appMessage(err)
	case apperrors.ErrCodeDocumentParse:
		status = http.StatusUnprocessableEntity
		message = "the uploaded document could not be parsed"
	case apperrors.ErrCodeServiceUnavailable,
		apperrors.ErrCodeRemoteRejected,
		apperrors.ErrCodeEmptyResponse,
		apperrors.ErrCodeMalformedResponse:
		status = http.StatusBadGateway
		message = "AI service request failed"
	default:
		status = http.StatusInternalServerError
		code = "INTERNAL_ERROR"
		message = "internal server error"
	}

	s.logger.LogError(err, "request error",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
	)

	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func appMessage(err error) string {
	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return "invalid request"
}

func badRequest(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

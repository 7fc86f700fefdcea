package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"cvtailor/internal/common"
	apperrors "cvtailor/internal/errors"
	"cvtailor/internal/extract"
	"cvtailor/internal/types"
)

// extractUpload spools the multipart "file" field to a temp file and
// extracts its text. The temp file never outlives the request.
func (s *Server) extractUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", apperrors.NewValidationError(
			apperrors.ErrCodeInvalidRequest,
			"multipart field 'file' is required",
			err,
		)
	}
	defer file.Close()

	path, cleanup, err := common.SpoolToTemp(file, "cvtailor-upload-*.pdf")
	if err != nil {
		return "", err
	}
	defer cleanup()

	text, err := extract.TextFromFile(path)
	s.metrics.RecordExtraction(r.Context(), err == nil)
	if err != nil {
		return "", err
	}

	s.logger.Debug("document extracted",
		"filename", header.Filename,
		"size", header.Size,
		"text_length", len(text),
	)
	return text, nil
}

func (s *Server) handleCVSuggestion(w http.ResponseWriter, r *http.Request) {
	text, err := s.extractUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.svc.AnalyzeCV(r.Context(), text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleJobMatch(w http.ResponseWriter, r *http.Request) {
	text, err := s.extractUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	jobDescription := strings.TrimSpace(r.FormValue("jobDescription"))
	if jobDescription == "" {
		badRequest(w, apperrors.ErrCodeInvalidRequest, "form field 'jobDescription' is required")
		return
	}

	report, err := s.svc.MatchJob(r.Context(), text, jobDescription)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	text, err := s.extractUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

type convertRequest struct {
	CVText string `json:"cvText"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, apperrors.ErrCodeInvalidRequest, "request body must be JSON with a cvText field")
		return
	}
	if strings.TrimSpace(req.CVText) == "" {
		badRequest(w, apperrors.ErrCodeEmptyInput, "cvText must not be empty")
		return
	}

	record, err := s.svc.ConvertCV(r.Context(), req.CVText)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type enhanceRequest struct {
	CV          *types.ResumeRecord `json:"cv"`
	Suggestions []string            `json:"suggestions"`
}

func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, apperrors.ErrCodeInvalidRequest, "request body must be JSON with cv and suggestions fields")
		return
	}
	if req.CV == nil {
		badRequest(w, apperrors.ErrCodeInvalidRequest, "cv is required")
		return
	}
	if len(req.Suggestions) == 0 {
		badRequest(w, apperrors.ErrCodeInvalidRequest, "at least one suggestion is required")
		return
	}

	result, err := s.svc.EnhanceCV(r.Context(), *req.CV, req.Suggestions)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotImplemented, errorResponse{Error: errorBody{
		Code:    "NOT_IMPLEMENTED",
		Message: "PDF export is not available",
	}})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"request_count":  s.requestCount.Load(),
	}
	if s.limiters != nil {
		stats["tracked_clients"] = s.limiters.size()
	}
	writeJSON(w, http.StatusOK, stats)
}

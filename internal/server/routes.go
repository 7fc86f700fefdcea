package server

import "net/http"

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("POST /api/analysis/cv-suggestion", s.chain(s.handleCVSuggestion))
	mux.Handle("POST /api/analysis/job-match", s.chain(s.handleJobMatch))
	mux.Handle("POST /api/cv/upload", s.chain(s.handleUpload))
	mux.Handle("POST /api/cv/convert", s.chain(s.handleConvert))
	mux.Handle("POST /api/cv/enhance", s.chain(s.handleEnhance))
	mux.Handle("POST /api/cv/export-pdf", s.chain(s.handleExportPDF))

	// Health and stats skip auth and rate limiting.
	mux.Handle("GET /health", s.withRequestID(http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /stats", s.withRequestID(http.HandlerFunc(s.handleStats)))

	return mux
}

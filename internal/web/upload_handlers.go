package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/evcraddock/estatebi/internal/auth"
	"github.com/evcraddock/estatebi/internal/ingest"
)

// multipartOverhead is allowed on top of the file size for form framing.
const multipartOverhead = 1 << 20

// handleUpload routes /api/upload requests.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	switch route := subpath(r, "/api/upload"); {
	case route == "" && r.Method == http.MethodPost:
		s.apiUpload(w, r)
	case route == "history" && r.Method == http.MethodGet:
		s.apiUploadHistory(w, r)
	case route == "template" && r.Method == http.MethodGet:
		s.apiUploadTemplate(w)
	case route == "" || route == "history" || route == "template":
		methodNotAllowed(w)
	default:
		apiError(w, "Endpoint not found", http.StatusNotFound)
	}
}

// apiUpload ingests the multipart "file" field. Row problems are reported
// in the response body; only file-level problems are errors.
func (s *Server) apiUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apiError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		apiError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			slogWarn(r, "closing upload", cerr)
		}
	}()

	kind, err := ingest.KindFromFilename(header.Filename)
	if err != nil {
		apiError(w, "Only CSV, JSON and XLSX files are allowed", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.maxUpload+1))
	if err != nil {
		apiError(w, "Failed to read upload", http.StatusBadRequest)
		return
	}
	if int64(len(data)) > s.maxUpload {
		apiError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	up := ingest.Upload{
		Filename:  header.Filename,
		Kind:      kind,
		Data:      data,
		IPAddress: clientIP(r),
	}
	if c, ok := auth.ClaimsFrom(r.Context()); ok {
		up.UserID = c.ID
	}

	report, err := s.ingester.Ingest(r.Context(), up)
	switch {
	case errors.Is(err, ingest.ErrParse):
		apiJSON(w, map[string]string{"error": "Failed to parse file", "message": err.Error()}, http.StatusBadRequest)
		return
	case err != nil:
		internalError(w, r, "Failed to process upload", err)
		return
	}

	apiJSON(w, report, http.StatusOK)
}

// apiUploadHistory returns the most recent uploads.
func (s *Server) apiUploadHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.Recent(r.Context())
	if err != nil {
		internalError(w, r, "Failed to fetch upload history", err)
		return
	}
	apiJSON(w, entries, http.StatusOK)
}

// apiUploadTemplate serves the sample CSV as a download.
func (s *Server) apiUploadTemplate(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+ingest.TemplateFilename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(ingest.Template())
}

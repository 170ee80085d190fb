package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/evcraddock/estatebi/internal/activity"
	"github.com/evcraddock/estatebi/internal/auth"
)

// handleLogs routes /api/logs requests.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	switch route := subpath(r, "/api/logs"); {
	case route == "" && r.Method == http.MethodGet:
		s.apiListLogs(w, r)
	case route == "" && r.Method == http.MethodPost:
		s.apiCreateLog(w, r)
	case route == "stats" && r.Method == http.MethodGet:
		s.apiLogStats(w, r)
	case route == "" || route == "stats":
		methodNotAllowed(w)
	default:
		apiError(w, "Endpoint not found", http.StatusNotFound)
	}
}

func (s *Server) apiListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := activity.ListOptions{
		Event:  q.Get("event"),
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if v := q.Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			apiError(w, "user_id must be a number", http.StatusBadRequest)
			return
		}
		opts.UserID = id
	}

	entries, err := s.activity.List(r.Context(), opts)
	if err != nil {
		internalError(w, r, "Failed to fetch logs", err)
		return
	}
	apiJSON(w, entries, http.StatusOK)
}

func (s *Server) apiCreateLog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Event     string `json:"event"`
		Details   string `json:"details"`
		IPAddress string `json:"ip_address"`
	}
	if err := decodeJSON(r, &req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = clientIP(r)
	}

	var userID *int64
	if c, ok := auth.ClaimsFrom(r.Context()); ok {
		userID = &c.ID
	}

	id, err := s.activity.Log(r.Context(), userID, req.Event, req.Details, req.IPAddress)
	if errors.Is(err, activity.ErrEventRequired) {
		apiError(w, "Event is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, r, "Failed to create log entry", err)
		return
	}

	apiJSON(w, map[string]interface{}{"message": "Log entry created", "id": id}, http.StatusCreated)
}

func (s *Server) apiLogStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.activity.Stats(r.Context())
	if err != nil {
		internalError(w, r, "Failed to fetch log stats", err)
		return
	}
	apiJSON(w, stats, http.StatusOK)
}

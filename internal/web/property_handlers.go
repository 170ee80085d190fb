package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/evcraddock/estatebi/internal/property"
	"github.com/evcraddock/estatebi/internal/transaction"
)

// handleAPIProperties routes /api/properties requests.
func (s *Server) handleAPIProperties(w http.ResponseWriter, r *http.Request) {
	path := subpath(r, "/api/properties")

	// /api/properties: list or create
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.apiListProperties(w, r)
		case http.MethodPost:
			s.protected(s.apiCreateProperty).ServeHTTP(w, r)
		default:
			methodNotAllowed(w)
		}
		return
	}

	// /api/properties/search/{term}
	if term, ok := strings.CutPrefix(path, "search/"); ok {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.apiSearchProperties(w, r, term)
		return
	}

	// /api/properties/{id}: show, update or delete
	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		apiError(w, "invalid property ID", http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.apiGetProperty(w, r, id)
	case http.MethodPut:
		s.protected(func(w http.ResponseWriter, r *http.Request) { s.apiUpdateProperty(w, r, id) }).ServeHTTP(w, r)
	case http.MethodDelete:
		s.protected(func(w http.ResponseWriter, r *http.Request) { s.apiDeleteProperty(w, r, id) }).ServeHTTP(w, r)
	default:
		methodNotAllowed(w)
	}
}

// apiListProperties returns properties matching the query filters.
func (s *Server) apiListProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := property.ListOptions{
		City:   q.Get("city"),
		Type:   q.Get("type"),
		Status: q.Get("status"),
		Limit:  queryInt(r, "limit", property.DefaultListLimit),
		Offset: queryInt(r, "offset", 0),
	}
	if v := q.Get("region_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			apiError(w, "region_id must be a number", http.StatusBadRequest)
			return
		}
		opts.RegionID = id
	}

	props, err := s.propRepo.List(r.Context(), opts)
	if err != nil {
		internalError(w, r, "Failed to fetch properties", err)
		return
	}
	if props == nil {
		props = []*property.Property{}
	}
	apiJSON(w, props, http.StatusOK)
}

// apiGetProperty returns one property with its transactions.
func (s *Server) apiGetProperty(w http.ResponseWriter, r *http.Request, id int64) {
	p, err := s.propRepo.GetByID(r.Context(), id)
	if errors.Is(err, property.ErrNotFound) {
		apiError(w, "Property not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, r, "Failed to fetch property", err)
		return
	}

	txs, err := s.txRepo.ListByPropertyID(r.Context(), id)
	if err != nil {
		internalError(w, r, "Failed to fetch property", err)
		return
	}
	if txs == nil {
		txs = []*transaction.Transaction{}
	}

	type response struct {
		*property.Property
		Transactions []*transaction.Transaction `json:"transactions"`
	}
	apiJSON(w, response{Property: p, Transactions: txs}, http.StatusOK)
}

// apiCreateProperty stores a manually entered property.
func (s *Server) apiCreateProperty(w http.ResponseWriter, r *http.Request) {
	var p property.Property
	if err := decodeJSON(r, &p); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	p.ID = 0

	saved, err := s.propService.Create(r.Context(), &p)
	if errors.Is(err, property.ErrMissingRequired) {
		apiError(w, "City and price are required", http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, r, "Failed to create property", err)
		return
	}

	apiJSON(w, map[string]interface{}{
		"message": "Property created successfully",
		"id":      saved.ID,
	}, http.StatusCreated)
}

// apiUpdateProperty applies a partial update.
func (s *Server) apiUpdateProperty(w http.ResponseWriter, r *http.Request, id int64) {
	var c property.Changes
	if err := decodeJSON(r, &c); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	err := s.propService.Update(r.Context(), id, c)
	switch {
	case errors.Is(err, property.ErrNoChanges):
		apiError(w, "No valid fields to update", http.StatusBadRequest)
		return
	case errors.Is(err, property.ErrNotFound):
		apiError(w, "Property not found", http.StatusNotFound)
		return
	case err != nil:
		internalError(w, r, "Failed to update property", err)
		return
	}

	apiJSON(w, map[string]string{"message": "Property updated successfully"}, http.StatusOK)
}

// apiDeleteProperty removes a property and its transactions.
func (s *Server) apiDeleteProperty(w http.ResponseWriter, r *http.Request, id int64) {
	err := s.propRepo.Delete(r.Context(), id)
	if errors.Is(err, property.ErrNotFound) {
		apiError(w, "Property not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, r, "Failed to delete property", err)
		return
	}
	apiJSON(w, map[string]string{"message": "Property deleted successfully"}, http.StatusOK)
}

// apiSearchProperties matches term against code, address, city and description.
func (s *Server) apiSearchProperties(w http.ResponseWriter, r *http.Request, term string) {
	props, err := s.propRepo.Search(r.Context(), term)
	if err != nil {
		internalError(w, r, "Search failed", err)
		return
	}
	if props == nil {
		props = []*property.Property{}
	}
	apiJSON(w, props, http.StatusOK)
}

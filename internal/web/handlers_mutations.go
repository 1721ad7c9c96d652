package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sheetpix/catalog/internal/catalog"
)

// handleListScenarios returns a template's full image edit log in replay
// order.
func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	id, ok := s.templateID(w, r)
	if !ok {
		return
	}

	scenarios, err := s.service.Scenarios(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scenarios)
}

// handleAppendScenario appends one edit to the scenario log. The log is
// append-only; there is no update or delete.
func (s *Server) handleAppendScenario(w http.ResponseWriter, r *http.Request) {
	id, ok := s.templateID(w, r)
	if !ok {
		return
	}

	var sc catalog.Scenario
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		s.respondBadRequest(w, r, "invalid request body")
		return
	}

	stored, err := s.service.AppendScenario(r.Context(), id, sc)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// handleListOverrides returns the full override map for a template.
func (s *Server) handleListOverrides(w http.ResponseWriter, r *http.Request) {
	id, ok := s.templateID(w, r)
	if !ok {
		return
	}

	overrides, err := s.service.Overrides(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overrides)
}

// handleUpsertOverride creates or replaces the override for one product key.
// The optional descriptionFields carry the text fields of a synthetic
// new-product row, currently the product title.
func (s *Server) handleUpsertOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := s.templateID(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")

	var req struct {
		catalog.OverrideValue
		DescriptionFields map[string]string `json:"descriptionFields,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondBadRequest(w, r, "invalid request body")
		return
	}

	if err := s.service.UpsertOverride(r.Context(), id, key, req.OverrideValue, req.DescriptionFields); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"productKey": key})
}

// handleDeleteOverride removes the override for one product key. Deleting a
// key that has no override is not an error.
func (s *Server) handleDeleteOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := s.templateID(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	if key == "" {
		s.respondBadRequest(w, r, "missing product key")
		return
	}

	if err := s.service.DeleteOverride(r.Context(), id, key); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

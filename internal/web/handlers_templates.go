package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sheetpix/catalog/internal/catalog"
)

// templateID parses the {id} URL parameter. On failure it writes the error
// response and returns false.
func (s *Server) templateID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondBadRequest(w, r, "invalid template id")
		return uuid.Nil, false
	}
	return id, true
}

// handleListTemplates returns all templates, most recently updated first.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.service.Templates(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// handleCreateTemplate creates a new template.
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string               `json:"name"`
		Platform string               `json:"platform"`
		RowMode  catalog.RowMode      `json:"rowMode"`
		GroupBy  catalog.GroupByField `json:"groupBy"`
		Columns  []catalog.Column     `json:"columns"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondBadRequest(w, r, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.respondBadRequest(w, r, "name is required")
		return
	}

	created, err := s.service.CreateTemplate(r.Context(), catalog.Template{
		Name:     strings.TrimSpace(req.Name),
		Platform: req.Platform,
		RowMode:  req.RowMode,
		GroupBy:  req.GroupBy,
		Columns:  req.Columns,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// handleGetTemplate returns a single template by ID.
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.templateID(w, r)
	if !ok {
		return
	}

	template, err := s.service.Template(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

// handleUpdateColumns replaces a template's column mapping.
func (s *Server) handleUpdateColumns(w http.ResponseWriter, r *http.Request) {
	id, ok := s.templateID(w, r)
	if !ok {
		return
	}

	var req struct {
		Columns []catalog.Column `json:"columns"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondBadRequest(w, r, "invalid request body")
		return
	}
	if len(req.Columns) == 0 {
		s.respondBadRequest(w, r, "columns are required")
		return
	}

	updated, err := s.service.UpdateColumns(r.Context(), id, req.Columns)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleAutoMap runs the column classifier over a template's unmapped
// columns and persists the result.
func (s *Server) handleAutoMap(w http.ResponseWriter, r *http.Request) {
	id, ok := s.templateID(w, r)
	if !ok {
		return
	}

	mapped, err := s.service.AutoMap(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapped)
}

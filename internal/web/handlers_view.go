package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sheetpix/catalog/internal/catalog"
)

// pagingParams reads page, pageSize and q query parameters. Missing or
// malformed values fall back to zero; the service clamps them to its
// configured bounds.
func pagingParams(r *http.Request) (page, pageSize int, search string) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	pageSize, _ = strconv.Atoi(q.Get("pageSize"))
	return page, pageSize, q.Get("q")
}

// handleWorkingView returns one page of the merged working view: originals
// with the scenario log replayed and overrides applied.
func (s *Server) handleWorkingView(w http.ResponseWriter, r *http.Request) {
	id, ok := s.templateID(w, r)
	if !ok {
		return
	}

	page, pageSize, search := pagingParams(r)
	result, err := s.service.WorkingView(r.Context(), id, page, pageSize, search)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleListRows returns one page of the stored rows as imported, untouched
// by scenarios or overrides.
func (s *Server) handleListRows(w http.ResponseWriter, r *http.Request) {
	id, ok := s.templateID(w, r)
	if !ok {
		return
	}

	page, pageSize, search := pagingParams(r)
	result, err := s.service.Rows(r.Context(), id, page, pageSize, search)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleReplaceRows replaces a template's stored rows wholesale, as after a
// fresh sheet import.
func (s *Server) handleReplaceRows(w http.ResponseWriter, r *http.Request) {
	id, ok := s.templateID(w, r)
	if !ok {
		return
	}

	var req struct {
		Items []catalog.Row `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondBadRequest(w, r, "invalid request body")
		return
	}

	if err := s.service.ReplaceRows(r.Context(), id, req.Items); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"stored": len(req.Items)})
}

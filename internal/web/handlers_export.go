package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sheetpix/catalog/internal/export"
	"github.com/sheetpix/catalog/internal/logging"
)

// handleExport renders the fully merged row set of a template as an .xlsx
// download. Exports are capped by the concurrency limiter and by the
// configured row limit; the workbook is built in memory and streamed once
// complete.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.templateID(w, r)
	if !ok {
		return
	}

	if err := s.exports.Acquire(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	defer s.exports.Release()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Export.Timeout)
	defer cancel()

	t, rows, err := s.service.ExportRows(ctx, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if len(rows) > s.cfg.Export.MaxRows {
		respondErrorJSON(w, UserMessage{
			Message: "The merged view is too large to export",
			Action:  "Raise EXPORT_MAX_ROWS or reduce the template's rows",
			Code:    "EXP002",
		}, http.StatusRequestEntityTooLarge)
		return
	}

	f, err := export.Workbook(t, rows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(t)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Error("export write failed", "error", err)
	}
}

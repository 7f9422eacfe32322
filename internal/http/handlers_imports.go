package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fteboard/internal/core"
	"fteboard/internal/log"
)

type createImportRequest struct {
	Source   string    `json:"source"`
	DateFrom core.Date `json:"dateFrom" validate:"required"`
	DateTo   core.Date `json:"dateTo" validate:"required"`
}

// handleCreateImport answers 202 for a queued run and 201 for one executed
// inline, failed or not.
func (s *Server) handleCreateImport(w http.ResponseWriter, r *http.Request) {
	var req createImportRequest
	if err := DecodeJSON(r, &req); err != nil {
		s.fail(w, r, log.OpImport, err)
		return
	}
	if err := core.ValidateStruct(req); err != nil {
		s.fail(w, r, log.OpImport, err)
		return
	}

	run, err := s.svc.Imports.Request(r.Context(), sanitizeInput(req.Source), req.DateFrom, req.DateTo)
	switch {
	case err != nil && run.Status != core.ImportFailed:
		s.fail(w, r, log.OpImport, err)
		return
	case run.Status == core.ImportPending:
		s.countImport(false)
		NewJSONResponse().
			Status(http.StatusAccepted).
			Header("Location", "/api/imports/"+run.ID.String()).
			Data(run).
			Write(w)
	default:
		s.countImport(run.Status == core.ImportFailed)
		NewJSONResponse().
			Status(http.StatusCreated).
			Header("Location", "/api/imports/"+run.ID.String()).
			Data(run).
			Write(w)
	}
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, log.OpRead, fmt.Errorf("%w: invalid import id", errBadParam))
		return
	}
	run, err := s.svc.Imports.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	OK(w, run)
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), 20)
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	runs, err := s.svc.Imports.List(r.Context(), limit)
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	OK(w, nonNil(runs))
}

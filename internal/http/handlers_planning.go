package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"fteboard/internal/core"
	"fteboard/internal/log"
)

type createKeywordRequest struct {
	Keyword  string `json:"keyword" validate:"required,max=100"`
	Category string `json:"category" validate:"required"`
}

type updateKeywordRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (s *Server) handleListKeywords(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := parseBool(r.URL.Query().Get("active"))
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	res, err := s.svc.Planning.Keywords(r.Context(), activeOnly)
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	OK(w, nonNil(res))
}

func (s *Server) handleCreateKeyword(w http.ResponseWriter, r *http.Request) {
	var req createKeywordRequest
	if err := DecodeJSON(r, &req); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	req.Keyword = stripControl(req.Keyword)
	if err := core.ValidateStruct(req); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	k, err := s.svc.Planning.AddKeyword(r.Context(), req.Keyword, req.Category)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	Created(w, k)
}

func (s *Server) handleUpdateKeyword(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		s.fail(w, r, log.OpUpdate, fmt.Errorf("%w: invalid keyword id", errBadParam))
		return
	}
	var req updateKeywordRequest
	if err := DecodeJSON(r, &req); err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	if err := core.ValidateStruct(req); err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	k, err := s.svc.Planning.SetKeywordActive(r.Context(), id, *req.Active)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	OK(w, k)
}

// handleListPlannedFTE lists records overlapping the optional from/to bounds.
func (s *Server) handleListPlannedFTE(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var from, to core.Date
	var err error
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if from, err = core.ParseDate(v); err != nil {
			s.fail(w, r, log.OpList, err)
			return
		}
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		if to, err = core.ParseDate(v); err != nil {
			s.fail(w, r, log.OpList, err)
			return
		}
	}
	res, err := s.svc.Planning.PlannedFTE(r.Context(), from, to)
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	OK(w, nonNil(res))
}

func (s *Server) handleCreatePlannedFTE(w http.ResponseWriter, r *http.Request) {
	var rec core.PlannedFTERecord
	if err := DecodeJSON(r, &rec); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	rec.ID = 0
	rec.PersonName = sanitizeInput(rec.PersonName)
	stored, err := s.svc.Planning.SetPlannedFTE(r.Context(), rec)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	Created(w, stored)
}

func (s *Server) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Planning.Holidays(r.Context(), strings.TrimSpace(r.URL.Query().Get("country")))
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	OK(w, nonNil(res))
}

func (s *Server) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	var h core.Holiday
	if err := DecodeJSON(r, &h); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	h.Name = sanitizeInput(h.Name)
	stored, err := s.svc.Planning.AddHoliday(r.Context(), h)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	Created(w, stored)
}

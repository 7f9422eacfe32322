package http

import (
	"net/http"

	"fteboard/internal/core"
	"fteboard/internal/log"
)

func (s *Server) handleWorkingDays(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	res, err := s.svc.Reports.WorkingDays(r.Context(), p.Year, p.Month)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	OK(w, res)
}

func (s *Server) handleWorkingHours(w http.ResponseWriter, r *http.Request) {
	p, err := ParseRangeParams(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	res, err := s.svc.Reports.WorkingHours(r.Context(), p.From, p.To)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	OK(w, res)
}

func (s *Server) handlePeriodReport(w http.ResponseWriter, r *http.Request) {
	p, err := ParseRangeParams(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	res, err := s.svc.Reports.PeriodReport(r.Context(), p.From, p.To, p.Strict)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	OK(w, res)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	res, err := s.svc.Reports.Monthly(r.Context(), p.Year, p.Month)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	OK(w, res)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	p, err := ParseRangeParams(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	res, err := s.svc.Reports.Categories(r.Context(), p.From, p.To, p.Strict)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	OK(w, map[string]any{
		"dateFrom":   p.From,
		"dateTo":     p.To,
		"strict":     p.Strict,
		"categories": res,
	})
}

func (s *Server) handleUnpaired(w http.ResponseWriter, r *http.Request) {
	p, err := ParseRangeParams(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	res, err := s.svc.Reports.Unpaired(r.Context(), p.From, p.To, p.Strict)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	OK(w, res)
}

// validateRequest carries timesheet rows to classify before import.
type validateRequest struct {
	Entries []core.TimesheetEntry `json:"entries" validate:"required,min=1,dive"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := DecodeJSON(r, &req); err != nil {
		s.fail(w, r, log.OpValidate, err)
		return
	}
	for i := range req.Entries {
		e := &req.Entries[i]
		e.PersonName = sanitizeInput(e.PersonName)
		e.ProjectName = sanitizeInput(e.ProjectName)
		e.ActivityName = sanitizeInput(e.ActivityName)
		e.Description = sanitizeInput(e.Description)
	}
	if err := core.ValidateStruct(req); err != nil {
		s.fail(w, r, log.OpValidate, err)
		return
	}
	res, err := s.svc.Reports.Validate(r.Context(), req.Entries)
	if err != nil {
		s.fail(w, r, log.OpValidate, err)
		return
	}
	OK(w, res)
}

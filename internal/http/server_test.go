package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fteboard/internal/amqp"
	"fteboard/internal/calendar"
	"fteboard/internal/core"
	"fteboard/internal/services"
	srcmemory "fteboard/internal/source/memory"
	"fteboard/internal/storage/memory"
)

type queuePublisher struct{ msgs []*amqp.ImportRequestMessage }

func (p *queuePublisher) PublishImportRequest(_ context.Context, msg *amqp.ImportRequestMessage) error {
	p.msgs = append(p.msgs, msg)
	return nil
}

func novemberRows(person string) []core.TimesheetEntry {
	var out []core.TimesheetEntry
	for day := 1; day <= 30; day++ {
		d := core.NewDate(2025, 11, day)
		if !calendar.IsWeekday(d) || day == 17 {
			continue
		}
		out = append(out, core.TimesheetEntry{
			PersonName:   person,
			ProjectName:  "OPS_2025",
			ActivityName: "Candidate interview",
			Date:         d,
			Hours:        8,
		})
	}
	return out
}

type testEnv struct {
	srv   *Server
	store *memory.Store
}

func newTestEnv(t *testing.T, publisher amqp.Publisher, rateLimit int) *testEnv {
	t.Helper()
	store := memory.NewStore()
	reports := services.NewReportService(store, calendar.Czech(), services.DefaultReportServiceConfig(), nil)
	planning := services.NewPlanningService(store, "CZ", reports.Invalidate, nil)
	imports := services.NewImportService(store, publisher, nil, srcmemory.New(novemberRows("Alice")...))
	imports.OnImported(reports.Invalidate)

	srv := NewServer(Config{Addr: ":0", RateLimitPerMinute: rateLimit}, Services{
		Reports:  reports,
		Planning: planning,
		Imports:  imports,
		Store:    store,
	})
	srv.now = func() time.Time { return time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testEnv{srv: srv, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func (e *testEnv) importNovember(t *testing.T) {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/imports", `{"dateFrom":"2025-11-01","dateTo":"2025-11-30"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("import status = %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := env.do(t, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rr.Code)
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("%s missing security headers", path)
		}
	}
}

func TestWorkingDays(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	rr := env.do(t, http.MethodGet, "/api/working-days?year=2025&month=11", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	got := decode[calendar.WorkingDaysResult](t, rr)
	if got.WorkingDays != 19 || got.WorkingHours != 152 {
		t.Errorf("WorkingDays = %d/%dh, want 19/152h", got.WorkingDays, got.WorkingHours)
	}

	rr = env.do(t, http.MethodGet, "/api/working-days", "")
	if got := decode[calendar.WorkingDaysResult](t, rr); got.Month != 11 || got.Year != 2025 {
		t.Errorf("default month = %d-%d, want 2025-11", got.Year, got.Month)
	}

	rr = env.do(t, http.MethodGet, "/api/working-days?month=13", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("month=13 status = %d, want 400", rr.Code)
	}
	if body := decode[ErrorBody](t, rr); !strings.Contains(body.Error, "invalid month") {
		t.Errorf("error = %q", body.Error)
	}
}

func TestRangeParamErrors(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	paths := []string{
		"/api/reports/period?from=2025-11-01",
		"/api/reports/period?from=2025-11-30&to=2025-11-01",
		"/api/reports/categories?from=nope&to=2025-11-30",
		"/api/reports/unpaired?from=2025-11-01&to=2025-11-30&strict=maybe",
		"/api/working-hours?to=2025-11-30",
	}
	for _, path := range paths {
		if rr := env.do(t, http.MethodGet, path, ""); rr.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, rr.Code)
		}
	}
}

func TestImportThenReports(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	env.importNovember(t)

	rr := env.do(t, http.MethodGet, "/api/reports/monthly?year=2025&month=11", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("monthly status = %d", rr.Code)
	}
	monthly := decode[services.MonthlyReport](t, rr)
	if len(monthly.People) != 1 || monthly.People[0].FTE != 1 {
		t.Errorf("monthly people = %+v, want Alice at 1.0", monthly.People)
	}

	rr = env.do(t, http.MethodGet, "/api/reports/unpaired?from=2025-11-01&to=2025-11-30&strict=true", "")
	unpaired := decode[services.UnpairedReport](t, rr)
	if unpaired.Count != 0 || unpaired.Total != 19 || unpaired.QualityScore != 100 {
		t.Errorf("unpaired = %d/%d score %v, want 0/19 score 100", unpaired.Count, unpaired.Total, unpaired.QualityScore)
	}

	rr = env.do(t, http.MethodGet, "/api/reports/categories?from=2025-11-01&to=2025-11-30", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), string(core.CategoryHiring)) {
		t.Errorf("categories = %d %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/api/reports/period?from=2025-11-01&to=2025-11-30", "")
	if rr.Code != http.StatusOK {
		t.Errorf("period status = %d", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/api/working-hours?from=2025-11-01&to=2025-12-31", "")
	hours := decode[services.WorkingHoursReport](t, rr)
	if len(hours.Months) != 2 {
		t.Errorf("working-hours months = %d, want 2", len(hours.Months))
	}
}

func TestImports(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	rr := env.do(t, http.MethodPost, "/api/imports", `{"dateFrom":"2025-11-01","dateTo":"2025-11-30"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rr.Code)
	}
	run := decode[core.ImportRun](t, rr)
	if run.Status != core.ImportDone || run.Rows != 19 {
		t.Errorf("run = %s with %d rows, want done with 19", run.Status, run.Rows)
	}
	if loc := rr.Header().Get("Location"); loc != "/api/imports/"+run.ID.String() {
		t.Errorf("Location = %q", loc)
	}

	rr = env.do(t, http.MethodGet, "/api/imports/"+run.ID.String(), "")
	if rr.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", rr.Code)
	}
	rr = env.do(t, http.MethodGet, "/api/imports", "")
	if runs := decode[[]core.ImportRun](t, rr); len(runs) != 1 {
		t.Errorf("list = %d runs, want 1", len(runs))
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing run", http.MethodGet, "/api/imports/8f7c5a3e-8e32-4c1b-9d4e-2f1f8d6b7a10", "", http.StatusNotFound},
		{"bad run id", http.MethodGet, "/api/imports/not-a-uuid", "", http.StatusBadRequest},
		{"unknown source", http.MethodPost, "/api/imports", `{"source":"sap","dateFrom":"2025-11-01","dateTo":"2025-11-30"}`, http.StatusBadRequest},
		{"missing dates", http.MethodPost, "/api/imports", `{"source":"memory"}`, http.StatusUnprocessableEntity},
		{"inverted range", http.MethodPost, "/api/imports", `{"dateFrom":"2025-11-30","dateTo":"2025-11-01"}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/imports", `{"from":"2025-11-01"}`, http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/api/imports?limit=0", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := env.do(t, tt.method, tt.path, tt.body); rr.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestImportQueued(t *testing.T) {
	pub := &queuePublisher{}
	env := newTestEnv(t, pub, 0)

	rr := env.do(t, http.MethodPost, "/api/imports", `{"dateFrom":"2025-11-01","dateTo":"2025-11-30"}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rr.Code)
	}
	run := decode[core.ImportRun](t, rr)
	if run.Status != core.ImportPending {
		t.Errorf("status = %s, want pending", run.Status)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].ImportID != run.ID {
		t.Errorf("published %d messages, want one for %s", len(pub.msgs), run.ID)
	}
}

func TestKeywords(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	rr := env.do(t, http.MethodPost, "/api/keywords", `{"keyword":"  Onboarding ","category":"OPS Guiding"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body.String())
	}
	k := decode[core.ActivityKeyword](t, rr)
	if k.Keyword != "  onboarding " || k.Category != core.CategoryGuiding || !k.Active {
		t.Errorf("created = %+v", k)
	}

	rr = env.do(t, http.MethodPatch, "/api/keywords/"+itoa(k.ID), `{"active":false}`)
	if rr.Code != http.StatusOK || decode[core.ActivityKeyword](t, rr).Active {
		t.Errorf("patch = %d %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/api/keywords?active=true", "")
	for _, kw := range decode[[]core.ActivityKeyword](t, rr) {
		if kw.ID == k.ID {
			t.Error("inactive keyword listed with active=true")
		}
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown category", http.MethodPost, "/api/keywords", `{"keyword":"x","category":"Sales"}`, http.StatusUnprocessableEntity},
		{"restricted to keyword categories", http.MethodPost, "/api/keywords", `{"keyword":"x","category":"Other"}`, http.StatusUnprocessableEntity},
		{"empty keyword", http.MethodPost, "/api/keywords", `{"keyword":"  ","category":"OPS_Jobs"}`, http.StatusUnprocessableEntity},
		{"malformed body", http.MethodPost, "/api/keywords", `{"keyword":`, http.StatusBadRequest},
		{"missing active", http.MethodPatch, "/api/keywords/1", `{}`, http.StatusUnprocessableEntity},
		{"missing keyword", http.MethodPatch, "/api/keywords/99999", `{"active":true}`, http.StatusNotFound},
		{"bad id", http.MethodPatch, "/api/keywords/abc", `{"active":true}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := env.do(t, tt.method, tt.path, tt.body); rr.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestPlannedFTE(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	rr := env.do(t, http.MethodPost, "/api/planned-fte", `{"personName":"Alice","fteValue":1,"validFrom":"2025-01-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body.String())
	}
	rr = env.do(t, http.MethodPost, "/api/planned-fte", `{"personName":"Alice","fteValue":0.5,"validFrom":"2025-07-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("second create status = %d: %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/api/planned-fte", "")
	recs := decode[[]core.PlannedFTERecord](t, rr)
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.ValidFrom.Equal(core.NewDate(2025, 1, 1).Time) && (rec.ValidTo == nil || rec.ValidTo.String() != "2025-06-30") {
			t.Errorf("first record ValidTo = %v, want 2025-06-30", rec.ValidTo)
		}
	}

	rr = env.do(t, http.MethodGet, "/api/planned-fte?from=2025-08-01&to=2025-08-31", "")
	if recs := decode[[]core.PlannedFTERecord](t, rr); len(recs) != 1 {
		t.Errorf("August records = %d, want 1", len(recs))
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"backdated overlap", `{"personName":"Alice","fteValue":1,"validFrom":"2024-12-01"}`, http.StatusConflict},
		{"fte out of range", `{"personName":"Bob","fteValue":3,"validFrom":"2025-01-01"}`, http.StatusUnprocessableEntity},
		{"missing person", `{"personName":" ","fteValue":1,"validFrom":"2025-01-01"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"personName":"Bob","fteValue":1,"validFrom":"01/01/2025"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := env.do(t, http.MethodPost, "/api/planned-fte", tt.body); rr.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestHolidayOverrideChangesWorkingDays(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	rr := env.do(t, http.MethodPost, "/api/holidays", `{"date":"2025-11-21","name":"Company day"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body.String())
	}
	if h := decode[core.Holiday](t, rr); h.Country != "CZ" {
		t.Errorf("country = %q, want CZ", h.Country)
	}

	rr = env.do(t, http.MethodGet, "/api/working-days?year=2025&month=11", "")
	if got := decode[calendar.WorkingDaysResult](t, rr); got.WorkingDays != 18 {
		t.Errorf("WorkingDays = %d, want 18 with override", got.WorkingDays)
	}

	rr = env.do(t, http.MethodGet, "/api/holidays?country=cz", "")
	if hs := decode[[]core.Holiday](t, rr); len(hs) != 1 {
		t.Errorf("holidays = %d, want 1", len(hs))
	}

	if rr := env.do(t, http.MethodPost, "/api/holidays", `{"date":"2025-11-21"}`); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing name status = %d, want 422", rr.Code)
	}
	if rr := env.do(t, http.MethodPost, "/api/holidays", `{"name":"x"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("missing date status = %d, want 400", rr.Code)
	}
}

func TestValidateEndpoint(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	body := `{"entries":[
		{"personName":"Alice","projectName":"OPS_2025","activityName":"Interview","date":"2025-11-03","hours":2},
		{"personName":"Alice","projectName":"OPS_2025","activityName":"Coffee","date":"2025-11-03","hours":1}
	]}`
	rr := env.do(t, http.MethodPost, "/api/validate", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	got := decode[services.ValidationReport](t, rr)
	if got.Unpaired != 1 || got.QualityScore != 50 {
		t.Errorf("unpaired = %d score %v, want 1 score 50", got.Unpaired, got.QualityScore)
	}

	if rr := env.do(t, http.MethodPost, "/api/validate", `{"entries":[]}`); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty entries status = %d, want 422", rr.Code)
	}
	bad := `{"entries":[{"personName":"Alice","projectName":"OPS","activityName":"x","date":"2025-11-03","hours":30}]}`
	if rr := env.do(t, http.MethodPost, "/api/validate", bad); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("hours=30 status = %d, want 422", rr.Code)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	env := newTestEnv(t, nil, 1)

	body := `{"keyword":"standup","category":"OPS_Guiding"}`
	if rr := env.do(t, http.MethodPost, "/api/keywords", body); rr.Code != http.StatusCreated {
		t.Fatalf("first POST status = %d", rr.Code)
	}
	rr := env.do(t, http.MethodPost, "/api/keywords", body)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("second POST status = %d, want 429", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/api/keywords", ""); rr.Code != http.StatusOK {
		t.Errorf("GET after limit status = %d, want 200", rr.Code)
	}
}

func TestNotFoundAndMetrics(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	rr := env.do(t, http.MethodGet, "/api/nope", "")
	if rr.Code != http.StatusNotFound || decode[ErrorBody](t, rr).Error == "" {
		t.Errorf("unknown route = %d %s", rr.Code, rr.Body.String())
	}
	if rr := env.do(t, http.MethodDelete, "/api/keywords", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d, want 405", rr.Code)
	}

	env.importNovember(t)
	rr = env.do(t, http.MethodGet, "/metrics", "")
	for _, want := range []string{"http_requests_total 3", "imports_requested_total 1", "imports_failed_total 0"} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("metrics missing %q:\n%s", want, rr.Body.String())
		}
	}
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fteboard/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const valuesResponse = `{
  "range": "Timesheet!A1:G4",
  "majorDimension": "ROWS",
  "values": [
    ["Person", "Email", "Project", "Activity", "Description", "Date", "Hours"],
    ["Alice", "alice@example.com", "OPS_2025", "Interview", "", "3.11.2025", "7,5"],
    ["Bob", "", "Client X", "Development", "", "2025-12-01", "8"],
    ["Carol", "", "OPS_2025", "Review", "", "2025-11-04", "n/a"]
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewWithService(svc, "sheet-id", "", nil)
}

func TestFetchEntries(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(valuesResponse))
	})

	batch, err := c.FetchEntries(context.Background(), core.NewDate(2025, 11, 1), core.NewDate(2025, 11, 30))
	if err != nil {
		t.Fatalf("FetchEntries() error = %v", err)
	}
	if !strings.Contains(gotPath, "/v4/spreadsheets/sheet-id/values/Timesheet!A:G") {
		t.Errorf("request path = %q, want the Timesheet!A:G range", gotPath)
	}
	if len(batch.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(batch.Entries))
	}
	e := batch.Entries[0]
	if e.PersonName != "Alice" || e.Hours != 7.5 || e.Date != core.NewDate(2025, 11, 3) {
		t.Errorf("entry = %+v, want Alice 7.5h on 2025-11-03", e)
	}
	if len(batch.Rejected) != 1 || batch.Rejected[0].Row != 4 {
		t.Errorf("rejected = %+v, want row 4", batch.Rejected)
	}
}

func TestFetchEntries_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	})

	_, err := c.FetchEntries(context.Background(), core.Date{}, core.Date{})
	if err == nil {
		t.Fatal("FetchEntries() error = nil, want API error")
	}
	if !strings.Contains(err.Error(), "read Timesheet!A:G") {
		t.Errorf("FetchEntries() error = %v, want wrapped range", err)
	}
}

func TestFetchEntries_NilService(t *testing.T) {
	c := &Client{}
	if _, err := c.FetchEntries(context.Background(), core.Date{}, core.Date{}); err == nil {
		t.Fatal("FetchEntries() error = nil, want not initialized")
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	if err == nil || err.Error() != "missing spreadsheet id" {
		t.Errorf("New() error = %v, want missing spreadsheet id", err)
	}
}

func TestNew_InvalidCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "x", ServiceAccountJSON: "not-json"}, nil)
	if err == nil || !strings.Contains(err.Error(), "parse credentials") {
		t.Errorf("New() error = %v, want parse credentials error", err)
	}
}

func TestLoadCredentials_Missing(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := loadCredentials("", ""); err == nil {
		t.Fatal("loadCredentials() error = nil, want missing credentials")
	}
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fteboard/internal/core"
	"fteboard/internal/log"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRepository implements Store on a SQLite file.
type SQLiteRepository struct {
	db     *sql.DB
	logger *slog.Logger

	// afterPage runs between entry pages; tests use it to write mid-read.
	afterPage func()
}

var _ Store = (*SQLiteRepository)(nil)

// DSN adds the pragmas every connection needs to a database path.
func DSN(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(DSN(dbPath))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger := slog.Default().With(log.FieldComponent, log.ComponentStorage)
	logger.Debug("Database ready", "path", dbPath, "schema_version", version)
	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListEntries reads the range in PageSize batches keyed on the row id. All
// pages are read in one transaction, so a concurrent ReplaceEntries is seen
// either completely or not at all.
func (r *SQLiteRepository) ListEntries(ctx context.Context, from, to core.Date) ([]core.TimesheetEntry, error) {
	const q = `SELECT id, person_name, person_email, project_name, activity_name, COALESCE(description, ''), date, hours
		FROM timesheet_entries
		WHERE date >= ? AND date <= ? AND id > ?
		ORDER BY id
		LIMIT ?`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin read transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		out    []core.TimesheetEntry
		lastID int64
	)
	for {
		rows, err := tx.QueryContext(ctx, q, from.String(), to.String(), lastID, PageSize)
		if err != nil {
			return nil, fmt.Errorf("query entries: %w", err)
		}
		n := 0
		for rows.Next() {
			var (
				e    core.TimesheetEntry
				date string
			)
			if err := rows.Scan(&lastID, &e.PersonName, &e.PersonEmail, &e.ProjectName, &e.ActivityName, &e.Description, &date, &e.Hours); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan entry: %w", err)
			}
			if e.Date, err = core.ParseDate(date); err != nil {
				rows.Close()
				return nil, fmt.Errorf("entry %d: %w", lastID, err)
			}
			out = append(out, e)
			n++
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate entries: %w", err)
		}
		if n < PageSize {
			break
		}
		if r.afterPage != nil {
			r.afterPage()
		}
	}

	r.logger.DebugContext(ctx, "Entries loaded",
		log.FieldDateFrom, from.String(),
		log.FieldDateTo, to.String(),
		log.FieldRows, len(out))
	return out, nil
}

func (r *SQLiteRepository) ReplaceEntries(ctx context.Context, from, to core.Date, entries []core.TimesheetEntry, importID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM timesheet_entries WHERE date >= ? AND date <= ?`, from.String(), to.String())
	if err != nil {
		return 0, fmt.Errorf("delete entries: %w", err)
	}
	deleted, _ := res.RowsAffected()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO timesheet_entries
		(person_name, person_email, project_name, activity_name, description, date, hours, import_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.PersonName, e.PersonEmail, e.ProjectName, e.ActivityName,
			nullString(e.Description), e.Date.String(), e.Hours, nullString(importID)); err != nil {
			return 0, fmt.Errorf("insert entry %s/%s: %w", e.PersonName, e.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit entries: %w", err)
	}

	r.logger.InfoContext(ctx, "Entries replaced",
		log.FieldDateFrom, from.String(),
		log.FieldDateTo, to.String(),
		log.FieldImportID, importID,
		"deleted", deleted,
		log.FieldRows, len(entries))
	return len(entries), nil
}

func (r *SQLiteRepository) ListKeywords(ctx context.Context, activeOnly bool) ([]core.ActivityKeyword, error) {
	q := `SELECT id, keyword, category, active FROM activity_keywords`
	if activeOnly {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY category, keyword`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()

	out := []core.ActivityKeyword{}
	for rows.Next() {
		k, err := scanKeyword(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keywords: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanKeyword(s scanner) (core.ActivityKeyword, error) {
	var (
		k      core.ActivityKeyword
		cat    string
		active int
	)
	if err := s.Scan(&k.ID, &k.Keyword, &cat, &active); err != nil {
		return k, fmt.Errorf("scan keyword: %w", err)
	}
	k.Category = core.Category(cat)
	k.Active = active == 1
	return k, nil
}

func (r *SQLiteRepository) CreateKeyword(ctx context.Context, k core.ActivityKeyword) (core.ActivityKeyword, error) {
	if err := k.Validate(); err != nil {
		return k, err
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO activity_keywords (keyword, category, active) VALUES (?, ?, ?)`,
		k.Keyword, string(k.Category), boolInt(k.Active))
	if err != nil {
		return k, fmt.Errorf("insert keyword: %w", err)
	}
	if k.ID, err = res.LastInsertId(); err != nil {
		return k, fmt.Errorf("keyword id: %w", err)
	}
	return k, nil
}

func (r *SQLiteRepository) SetKeywordActive(ctx context.Context, id int64, active bool) (core.ActivityKeyword, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE activity_keywords SET active = ? WHERE id = ?`, boolInt(active), id)
	if err != nil {
		return core.ActivityKeyword{}, fmt.Errorf("update keyword: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ActivityKeyword{}, fmt.Errorf("keyword %d: %w", id, ErrNotFound)
	}
	row := r.db.QueryRowContext(ctx, `SELECT id, keyword, category, active FROM activity_keywords WHERE id = ?`, id)
	return scanKeyword(row)
}

const plannedColumns = `id, person_name, fte_value, valid_from, valid_to`

func scanPlanned(s scanner) (core.PlannedFTERecord, error) {
	var (
		rec       core.PlannedFTERecord
		validFrom string
		validTo   sql.NullString
	)
	if err := s.Scan(&rec.ID, &rec.PersonName, &rec.FTEValue, &validFrom, &validTo); err != nil {
		return rec, fmt.Errorf("scan planned fte: %w", err)
	}
	var err error
	if rec.ValidFrom, err = core.ParseDate(validFrom); err != nil {
		return rec, fmt.Errorf("planned fte %d valid_from: %w", rec.ID, err)
	}
	if validTo.Valid {
		to, err := core.ParseDate(validTo.String)
		if err != nil {
			return rec, fmt.Errorf("planned fte %d valid_to: %w", rec.ID, err)
		}
		rec.ValidTo = &to
	}
	return rec, nil
}

func queryPlanned(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}, query string, args ...any) ([]core.PlannedFTERecord, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query planned fte: %w", err)
	}
	defer rows.Close()

	out := []core.PlannedFTERecord{}
	for rows.Next() {
		rec, err := scanPlanned(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate planned fte: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListPlannedFTE(ctx context.Context, from, to core.Date) ([]core.PlannedFTERecord, error) {
	return queryPlanned(ctx, r.db,
		`SELECT `+plannedColumns+` FROM planned_fte
		WHERE valid_from <= ? AND (valid_to IS NULL OR valid_to >= ?)
		ORDER BY person_name, valid_from`,
		to.String(), from.String())
}

func (r *SQLiteRepository) CreatePlannedFTE(ctx context.Context, next core.PlannedFTERecord) (core.PlannedFTERecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return next, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := queryPlanned(ctx, tx,
		`SELECT `+plannedColumns+` FROM planned_fte WHERE person_name = ? ORDER BY valid_from`, next.PersonName)
	if err != nil {
		return next, err
	}

	closed, err := core.ApplyPlannedFTE(existing, next)
	if err != nil {
		return next, err
	}
	if closed != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE planned_fte SET valid_to = ? WHERE id = ?`, closed.ValidTo.String(), closed.ID); err != nil {
			return next, fmt.Errorf("close planned fte %d: %w", closed.ID, err)
		}
	}

	var validTo any
	if next.ValidTo != nil {
		validTo = next.ValidTo.String()
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO planned_fte (person_name, fte_value, valid_from, valid_to) VALUES (?, ?, ?, ?)`,
		next.PersonName, next.FTEValue, next.ValidFrom.String(), validTo)
	if err != nil {
		return next, fmt.Errorf("insert planned fte: %w", err)
	}
	if next.ID, err = res.LastInsertId(); err != nil {
		return next, fmt.Errorf("planned fte id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return next, fmt.Errorf("commit planned fte: %w", err)
	}

	attrs := []any{log.FieldPerson, next.PersonName, "fte", next.FTEValue, "valid_from", next.ValidFrom.String()}
	if closed != nil {
		attrs = append(attrs, "closed_id", closed.ID, "closed_to", closed.ValidTo.String())
	}
	r.logger.InfoContext(ctx, "Planned FTE stored", attrs...)
	return next, nil
}

func (r *SQLiteRepository) ListHolidays(ctx context.Context, country string) ([]core.Holiday, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT country, date, name FROM holidays WHERE country = ? ORDER BY date`, strings.ToUpper(country))
	if err != nil {
		return nil, fmt.Errorf("query holidays: %w", err)
	}
	defer rows.Close()

	out := []core.Holiday{}
	for rows.Next() {
		var (
			h    core.Holiday
			date string
		)
		if err := rows.Scan(&h.Country, &date, &h.Name); err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		if h.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("holiday date: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holidays: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpsertHoliday(ctx context.Context, h core.Holiday) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO holidays (country, date, name) VALUES (?, ?, ?)
		ON CONFLICT (country, date) DO UPDATE SET name = excluded.name`,
		strings.ToUpper(h.Country), h.Date.String(), h.Name)
	if err != nil {
		return fmt.Errorf("upsert holiday: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateImportRun(ctx context.Context, run core.ImportRun) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO import_runs
		(id, source, date_from, date_to, status, row_count, rejected, unpaired, error, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Source, run.DateFrom.String(), run.DateTo.String(), string(run.Status),
		run.Rows, run.Rejected, run.Unpaired, run.Error, run.CreatedAt.UTC().Format(timestampLayout), nullTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateImportRun(ctx context.Context, run core.ImportRun) error {
	res, err := r.db.ExecContext(ctx, `UPDATE import_runs
		SET status = ?, row_count = ?, rejected = ?, unpaired = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		string(run.Status), run.Rows, run.Rejected, run.Unpaired, run.Error, nullTime(run.FinishedAt), run.ID.String())
	if err != nil {
		return fmt.Errorf("update import run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("import run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

const importRunColumns = `id, source, date_from, date_to, status, row_count, rejected, unpaired, error, created_at, finished_at`

func scanImportRun(s scanner) (core.ImportRun, error) {
	var (
		run                     core.ImportRun
		rawID, from, to, status string
		createdAt               string
		finishedAt              sql.NullString
	)
	if err := s.Scan(&rawID, &run.Source, &from, &to, &status, &run.Rows, &run.Rejected, &run.Unpaired, &run.Error, &createdAt, &finishedAt); err != nil {
		return run, err
	}

	var err error
	if run.ID, err = uuid.Parse(rawID); err != nil {
		return run, fmt.Errorf("import run id: %w", err)
	}
	run.Status = core.ImportStatus(status)
	if run.DateFrom, err = core.ParseDate(from); err != nil {
		return run, err
	}
	if run.DateTo, err = core.ParseDate(to); err != nil {
		return run, err
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return run, fmt.Errorf("import run created_at: %w", err)
	}
	if finishedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return run, fmt.Errorf("import run finished_at: %w", err)
		}
		run.FinishedAt = &t
	}
	return run, nil
}

func (r *SQLiteRepository) GetImportRun(ctx context.Context, id uuid.UUID) (core.ImportRun, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+importRunColumns+` FROM import_runs WHERE id = ?`, id.String())
	run, err := scanImportRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return run, fmt.Errorf("import run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return run, fmt.Errorf("get import run: %w", err)
	}
	return run, nil
}

func (r *SQLiteRepository) ListImportRuns(ctx context.Context, limit int, statuses ...core.ImportStatus) ([]core.ImportRun, error) {
	q := `SELECT ` + importRunColumns + ` FROM import_runs`
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		q += ` WHERE status IN (?` + strings.Repeat(`, ?`, len(statuses)-1) + `)`
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	q += ` ORDER BY created_at DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query import runs: %w", err)
	}
	defer rows.Close()

	out := []core.ImportRun{}
	for rows.Next() {
		run, err := scanImportRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import runs: %w", err)
	}
	return out, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timestampLayout)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

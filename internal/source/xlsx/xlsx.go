// Package xlsx reads timesheet exports saved as Excel workbooks.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"fteboard/internal/core"
	"fteboard/internal/source"

	"github.com/xuri/excelize/v2"
)

const Name = "xlsx"

// Source reads one sheet of a workbook on disk. The file is reopened on
// every fetch so a replaced export is picked up by the next import.
type Source struct {
	path   string
	sheet  string
	logger *slog.Logger
}

var _ source.TimesheetSource = (*Source)(nil)

// New returns a workbook source. An empty sheet selects the first sheet.
func New(path, sheet string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{path: path, sheet: sheet, logger: logger}
}

func (s *Source) Name() string { return Name }

func (s *Source) FetchEntries(ctx context.Context, from, to core.Date) (source.Batch, error) {
	if err := ctx.Err(); err != nil {
		return source.Batch{}, err
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return source.Batch{}, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	rows, sheet, err := readRows(f, s.sheet)
	if err != nil {
		return source.Batch{}, err
	}
	batch := source.ParseRows(rows, from, to)
	s.logger.InfoContext(ctx, "Workbook read",
		"path", s.path,
		"sheet", sheet,
		"rows", len(rows),
		"entries", len(batch.Entries),
		"rejected", len(batch.Rejected))
	return batch, nil
}

// ReadRows parses a workbook from r. It is used for posted exports that
// never touch the disk.
func ReadRows(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	rows, _, err := readRows(f, sheet)
	return rows, err
}

func readRows(f *excelize.File, sheet string) ([][]string, string, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, "", errors.New("no worksheet found")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, sheet, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, sheet, nil
}

// Package ingest maps professional-network connection exports (CSV or XLSX)
// onto classification inputs.
package ingest

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Header names in a connections export. Matching is case-insensitive.
const (
	HeaderFirstName = "first name"
	HeaderLastName  = "last name"
	HeaderCompany   = "company"
	HeaderPosition  = "position"
)

// columns holds header positions; -1 means absent.
type columns struct {
	first, last, company, position int
}

func (c columns) cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// findHeader returns the index of the first row that names a company column,
// skipping any preamble the export carries above it.
func findHeader(rows [][]string) (int, columns, bool) {
	for i, row := range rows {
		cols := columns{first: -1, last: -1, company: -1, position: -1}
		for j, cell := range row {
			switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))) {
			case HeaderFirstName:
				cols.first = j
			case HeaderLastName:
				cols.last = j
			case HeaderCompany:
				cols.company = j
			case HeaderPosition:
				cols.position = j
			}
		}
		if cols.company >= 0 {
			return i, cols, true
		}
	}
	return 0, columns{}, false
}

// MapRows converts raw rows, header included, to classification inputs.
// Rows with every mapped cell blank are dropped; a blank company alone is kept
// so the cascade can label it.
func MapRows(rows [][]string) ([]model.ClassificationInput, error) {
	start, cols, ok := findHeader(rows)
	if !ok {
		return nil, eris.New("ingest: no header row with a Company column")
	}
	var out []model.ClassificationInput
	for _, row := range rows[start+1:] {
		in := model.ClassificationInput{
			CompanyName: cols.cell(row, cols.company),
			FirstName:   cols.cell(row, cols.first),
			LastName:    cols.cell(row, cols.last),
			Position:    cols.cell(row, cols.position),
		}
		if in == (model.ClassificationInput{}) {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

// ReadFile loads a connections export, choosing the parser by extension.
func ReadFile(ctx context.Context, path string) ([]model.ClassificationInput, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = ReadXLSX(path, XLSXOptions{})
	case ".csv", ".txt":
		rows, err = ReadCSVFile(ctx, path, CSVOptions{LazyQuotes: true})
	default:
		return nil, eris.Errorf("ingest: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	inputs, err := MapRows(rows)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: %s", filepath.Base(path))
	}
	zap.L().Info("ingest: loaded connections",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.Int("inputs", len(inputs)),
	)
	return inputs, nil
}

// Package earnings loads earnings announcements with their EPS surprise.
//
// The input table needs the columns Ticker, Earnings_Date, Expected_EPS and
// Actual_EPS in any order; header matching ignores case, spaces and
// underscores. Every row is validated once here. Bad rows are rejected with a
// reason instead of failing the whole load, but a missing column is fatal.
package earnings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/seenimoa/eventstudy/pkg/models"
	"github.com/seenimoa/eventstudy/pkg/utils"
)

// Column names of the earnings table.
const (
	ColTicker   = "Ticker"
	ColDate     = "Earnings_Date"
	ColExpected = "Expected_EPS"
	ColActual   = "Actual_EPS"
)

var requiredColumns = []string{ColTicker, ColDate, ColExpected, ColActual}

// Table is the result of loading an earnings table.
type Table struct {
	Events   []models.AnnouncementEvent
	Rejected []models.FailureRecord
}

// Source produces announcements for a set of tickers from a remote service.
type Source interface {
	Name() string
	Announcements(ctx context.Context, tickers []string) (Table, error)
}

// LoadFile loads a table from path, choosing the format by extension.
func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open earnings file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return LoadCSV(f)
	case ".html", ".htm":
		return LoadHTML(f)
	default:
		return Table{}, fmt.Errorf("%w: unsupported earnings file type %q", models.ErrInputSchema, filepath.Ext(path))
	}
}

// normalizeHeader folds a header cell to a comparable key.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// columnIndex maps each required column to its position in header.
func columnIndex(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[normalizeHeader(h)] = i
	}

	idx := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, c := range requiredColumns {
		i, ok := pos[normalizeHeader(c)]
		if !ok {
			missing = append(missing, c)
			continue
		}
		idx[c] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", models.ErrInputSchema, strings.Join(missing, ", "))
	}
	return idx, nil
}

// build turns raw rows into a Table. lineOf maps a row index to its 1-based
// source line, used in rejection reasons.
func build(idx map[string]int, rows [][]string, lineOf func(n int) int) Table {
	var t Table
	for n, row := range rows {
		ev, err := parseRow(idx, row)
		if err != nil {
			t.Rejected = append(t.Rejected, models.FailureRecord{
				Ticker: ev.Ticker,
				Date:   ev.AnnouncementDate,
				Kind:   models.KindInputSchema,
				Reason: fmt.Sprintf("row %d: %v", lineOf(n), err),
			})
			continue
		}
		t.Events = append(t.Events, ev)
	}
	return t
}

// parseRow parses one row. On error the returned event still carries
// whatever ticker and date could be read.
func parseRow(idx map[string]int, row []string) (models.AnnouncementEvent, error) {
	cell := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var partial models.AnnouncementEvent
	partial.Ticker = utils.NormalizeTicker(cell(ColTicker))

	date, err := utils.ParseDate(cell(ColDate))
	if err != nil {
		return partial, fmt.Errorf("%w: %v", models.ErrInputSchema, err)
	}
	partial.AnnouncementDate = date

	expected, err := parseEPS(cell(ColExpected))
	if err != nil {
		return partial, fmt.Errorf("%w: %s: %v", models.ErrInputSchema, ColExpected, err)
	}
	actual, err := parseEPS(cell(ColActual))
	if err != nil {
		return partial, fmt.Errorf("%w: %s: %v", models.ErrInputSchema, ColActual, err)
	}

	ev, err := models.NewAnnouncementEvent(partial.Ticker, date, expected, actual)
	if err != nil {
		return partial, err
	}
	return ev, nil
}

// parseEPS accepts plain numbers, a leading currency sign, thousands
// separators and accounting negatives such as "(0.12)".
func parseEPS(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") {
		return 0, fmt.Errorf("missing value")
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// Package csvdir serves daily prices from a directory of CSV files, one per
// ticker (<dir>/<TICKER>.csv), for offline and reproducible runs.
//
// Each file needs a Date column and a Close column; an "Adj Close" column is
// preferred when present. This is the layout Yahoo Finance's download button
// and most data vendors export.
package csvdir

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/eventstudy/pkg/models"
	"github.com/seenimoa/eventstudy/pkg/utils"
)

const providerName = "csvdir"

// Provider reads price files from a directory.
type Provider struct {
	dir string
}

// New creates a provider rooted at dir.
func New(dir string) *Provider {
	return &Provider{dir: dir}
}

// Name returns the provider name.
func (p *Provider) Name() string { return providerName }

// Path returns the file path used for ticker.
func (p *Provider) Path(ticker string) string {
	return filepath.Join(p.dir, utils.FileSafeTicker(ticker)+".csv")
}

// Prices returns the closes for ticker in [start, end]. A missing file is
// reported as models.ErrDataUnavailable.
func (p *Provider) Prices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := p.Path(ticker)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: no price file %s: %w", ticker, path, models.ErrDataUnavailable)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	all, err := ReadPrices(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	from, to := utils.DateOnly(start), utils.DateOnly(end)
	out := make([]models.PricePoint, 0, len(all))
	for _, pt := range all {
		if pt.Date.Before(from) || pt.Date.After(to) {
			continue
		}
		out = append(out, pt)
	}
	return out, nil
}

// ReadPrices parses a Date/Close CSV into ascending price points. Rows with
// an empty or "null" close are skipped.
func ReadPrices(r io.Reader) ([]models.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", models.ErrInputSchema, err)
	}

	dateCol, closeCol := -1, -1
	adjCol := -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "date", "datetime", "timestamp":
			dateCol = i
		case "close":
			closeCol = i
		case "adj close", "adj_close", "adjclose":
			adjCol = i
		}
	}
	if adjCol >= 0 {
		closeCol = adjCol
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("%w: price file needs Date and Close columns, got %v", models.ErrInputSchema, header)
	}

	var out []models.PricePoint
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInputSchema, err)
		}
		line, _ := cr.FieldPos(0)
		if dateCol >= len(rec) || closeCol >= len(rec) {
			continue
		}
		raw := strings.TrimSpace(rec[closeCol])
		if raw == "" || strings.EqualFold(raw, "null") {
			continue
		}
		date, err := utils.ParseDate(rec[dateCol])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", models.ErrInputSchema, line, err)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: close %q: %v", models.ErrInputSchema, line, raw, err)
		}
		out = append(out, models.PricePoint{Date: date, Close: v})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

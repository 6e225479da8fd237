package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/seenimoa/eventstudy/internal/study"
	"github.com/seenimoa/eventstudy/pkg/models"
	"github.com/seenimoa/eventstudy/pkg/utils"
)

// Output file names written by WriteFiles.
const (
	FileResults  = "results.csv"
	FileFailures = "failures.csv"
	FileScatter  = "surprise_vs_car.svg"
	FileBars     = "beats_vs_misses.svg"
	FileHTML     = "report.html"
)

// WriteResultsCSV writes one row per event result. Floats are written at full
// precision so ReadResultsCSV returns the same values.
func WriteResultsCSV(w io.Writer, results []models.EventResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Ticker", "Date", "Surprise_Pct", "Benchmark", "CAR", "Observations", "Alignment_Empty"}); err != nil {
		return err
	}
	for _, r := range results {
		rec := []string{
			r.Ticker,
			utils.FormatDate(r.Date),
			strconv.FormatFloat(r.SurprisePct, 'g', -1, 64),
			r.Benchmark,
			strconv.FormatFloat(r.CAR, 'g', -1, 64),
			strconv.Itoa(r.Observations),
			strconv.FormatBool(r.AlignmentEmpty),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadResultsCSV reads a file written by WriteResultsCSV.
func ReadResultsCSV(r io.Reader) ([]models.EventResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: results file is empty", models.ErrInputSchema)
	}

	var out []models.EventResult
	for i, rec := range recs[1:] {
		if len(rec) < 5 {
			return nil, fmt.Errorf("%w: row %d: expected at least 5 columns, got %d", models.ErrInputSchema, i+2, len(rec))
		}
		date, err := utils.ParseDate(rec[1])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", models.ErrInputSchema, i+2, err)
		}
		surprise, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: surprise: %v", models.ErrInputSchema, i+2, err)
		}
		car, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: CAR: %v", models.ErrInputSchema, i+2, err)
		}
		res := models.EventResult{Ticker: rec[0], Date: date, SurprisePct: surprise, Benchmark: rec[3], CAR: car}
		if len(rec) > 5 && rec[5] != "" {
			if res.Observations, err = strconv.Atoi(rec[5]); err != nil {
				return nil, fmt.Errorf("%w: row %d: observations: %v", models.ErrInputSchema, i+2, err)
			}
		}
		if len(rec) > 6 && rec[6] != "" {
			if res.AlignmentEmpty, err = strconv.ParseBool(rec[6]); err != nil {
				return nil, fmt.Errorf("%w: row %d: alignment_empty: %v", models.ErrInputSchema, i+2, err)
			}
		}
		out = append(out, res)
	}
	return out, nil
}

// WriteFailuresCSV writes one row per failed event.
func WriteFailuresCSV(w io.Writer, failures []models.FailureRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Ticker", "Date", "Kind", "Reason"}); err != nil {
		return err
	}
	for _, f := range failures {
		if err := cw.Write([]string{f.Ticker, utils.FormatDate(f.Date), string(f.Kind), f.Reason}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFiles writes the CSV exports, both charts and the HTML report into
// dir, creating it if needed. It returns the paths written.
func WriteFiles(dir string, s study.Summary, cfg ReportConfig) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	page, err := HTML(s, cfg)
	if err != nil {
		return nil, err
	}

	var written []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}
	str := func(s string) func(io.Writer) error {
		return func(w io.Writer) error {
			_, err := io.WriteString(w, s)
			return err
		}
	}

	steps := []struct {
		name string
		fn   func(io.Writer) error
	}{
		{FileResults, func(w io.Writer) error { return WriteResultsCSV(w, s.Outcome.Results) }},
		{FileFailures, func(w io.Writer) error { return WriteFailuresCSV(w, s.Outcome.Failures) }},
		{FileScatter, str(SurpriseVsCARChart(s.Outcome.Results, cfg.ChartCfg))},
		{FileBars, str(BeatsVsMissesChart(s, cfg.ChartCfg))},
		{FileHTML, str(page)},
	}
	for _, st := range steps {
		if err := write(st.name, st.fn); err != nil {
			return written, err
		}
	}
	return written, nil
}

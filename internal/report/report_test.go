package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/eventstudy/internal/analysis/bootstrap"
	"github.com/seenimoa/eventstudy/internal/analysis/summary"
	"github.com/seenimoa/eventstudy/internal/study"
	"github.com/seenimoa/eventstudy/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func sampleResults() []models.EventResult {
	d := time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC)
	return []models.EventResult{
		{Ticker: "AAPL", Date: d, SurprisePct: 4.52, Benchmark: "^GSPC", CAR: 2.31, Observations: 15},
		{Ticker: "MSFT", Date: d.AddDate(0, 0, -1), SurprisePct: 12.53, Benchmark: "^GSPC", CAR: -1.12, Observations: 15},
		{Ticker: "INTC", Date: d.AddDate(0, 0, -7), SurprisePct: -8.0, Benchmark: "^GSPC", CAR: -6.40, Observations: 14},
		{Ticker: "AMZN", Date: d, SurprisePct: 23.9, Benchmark: "^GSPC", CAR: 9.85, Observations: 15, AlignmentEmpty: false},
	}
}

func sampleSummary() study.Summary {
	results := sampleResults()
	beats, misses := summary.SplitBySurprise(results)
	corr, _ := summary.Correlation(results)
	return study.Summary{
		GeneratedAt: time.Date(2025, 11, 15, 10, 30, 0, 0, time.UTC),
		Options:     study.DefaultOptions(),
		Outcome: study.Outcome{
			Results: results,
			Failures: []models.FailureRecord{
				{Ticker: "XYZ", Date: time.Date(2025, 10, 21, 0, 0, 0, 0, time.UTC), Kind: models.KindDataUnavailable, Reason: "no prices <delisted>"},
			},
		},
		Overall:        summary.Describe(summary.CARs(results)),
		Beats:          summary.Describe(summary.CARs(beats)),
		Misses:         summary.Describe(summary.CARs(misses)),
		PositiveCAR:    2,
		NegativeCAR:    2,
		Top:            summary.TopN(results, 2),
		Bottom:         summary.BottomN(results, 2),
		Correlation:    corr,
		HasCorrelation: true,
		Inference: study.Inference{
			Seed:          42,
			All:           &models.BootstrapResult{PointEstimate: 1.16, CILower: -4.1, CIUpper: 6.3, PValue: 0.33, Iterations: 10000, SampleSize: 4},
			BeatsVsMisses: &models.BootstrapResult{PointEstimate: 10.08, CILower: 3.2, CIUpper: 14.1, PValue: 0.004, Iterations: 10000, SampleSize: 4},
		},
	}
}

// ════════════════════════════════════════════════════════════════════
// Charts
// ════════════════════════════════════════════════════════════════════

func TestScatterChart_Basic(t *testing.T) {
	points := []ScatterPoint{{X: -5, Y: -2, Label: "A"}, {X: 3, Y: 1}, {X: 10, Y: 4}}
	svg := ScatterChart(points, ChartConfig{Title: "S"})

	require.True(t, strings.HasPrefix(svg, "<svg") && strings.HasSuffix(svg, "</svg>"), "expected a complete svg document")
	assert.Equal(t, 3, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, "<title>A</title>")
	assert.Equal(t, 2, strings.Count(svg, `stroke="#e53935"`), "expected two dashed zero axes")
}

func TestScatterChart_SkipsNaN(t *testing.T) {
	svg := ScatterChart([]ScatterPoint{{X: 1, Y: 1}, {X: math.NaN(), Y: 2}}, DefaultChartConfig())
	assert.Equal(t, 1, strings.Count(svg, "<circle"))
}

func TestScatterChart_Empty(t *testing.T) {
	assert.Contains(t, ScatterChart(nil, ChartConfig{}), "No data")
}

func TestBarChart_WithNegative(t *testing.T) {
	svg := BarChart([]BarItem{{Label: "Beats", Value: 2.5}, {Label: "Misses", Value: -1.2}}, ChartConfig{})
	assert.Contains(t, svg, "#4caf50")
	assert.Contains(t, svg, "#ef5350")
	assert.Contains(t, svg, "Misses")
	assert.Contains(t, svg, "-1.2")
}

func TestBarChart_Empty(t *testing.T) {
	assert.Contains(t, BarChart(nil, ChartConfig{}), "No data")
}

func TestLineChart_Basic(t *testing.T) {
	series := []LineChartSeries{
		{Name: "Daily", Values: []float64{0.1, -0.3, 0.5}},
		{Name: "Cumulative", Values: []float64{0.1, -0.2, 0.3}},
	}
	svg := LineChart(series, []string{"-1", "+0", "+1"}, ChartConfig{})
	assert.Equal(t, 2, strings.Count(svg, "<path"))
	assert.Contains(t, svg, "Cumulative")
}

func TestLineChart_SinglePoint(t *testing.T) {
	svg := LineChart([]LineChartSeries{{Name: "x", Values: []float64{1}}}, nil, ChartConfig{})
	assert.NotContains(t, svg, "NaN")
	assert.NotContains(t, svg, "Inf")
}

func TestLineChart_Empty(t *testing.T) {
	assert.Contains(t, LineChart(nil, nil, ChartConfig{}), "No data")
}

func TestSurpriseVsCARChart(t *testing.T) {
	svg := SurpriseVsCARChart(sampleResults(), ChartConfig{})
	for _, want := range []string{"Earnings Surprise vs Stock Return", "Earnings Surprise (%)", "Cumulative Abnormal Return (%)", "AMZN 2025-10-30"} {
		assert.Contains(t, svg, want)
	}
}

func TestBeatsVsMissesChart(t *testing.T) {
	svg := BeatsVsMissesChart(sampleSummary(), ChartConfig{})
	assert.Contains(t, svg, "Beats (n=3)")
	assert.Contains(t, svg, "Misses (n=1)")
}

func TestWindowChart(t *testing.T) {
	w := models.EventWindow{
		Ticker: "AAPL", Benchmark: "^GSPC",
		AnnouncementDate: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Points: []models.WindowPoint{
			{DaysFromAnnouncement: -1, AbnormalReturn: 0.01},
			{DaysFromAnnouncement: 0, AbnormalReturn: 0.02},
			{DaysFromAnnouncement: 1, AbnormalReturn: -0.005},
		},
	}
	svg := WindowChart(w, ChartConfig{})
	assert.Contains(t, svg, "AAPL vs ^GSPC around 2024-05-02")
	assert.Contains(t, svg, "+0")
}

// ════════════════════════════════════════════════════════════════════
// Reports
// ════════════════════════════════════════════════════════════════════

func TestHTML_Basic(t *testing.T) {
	html, err := HTML(sampleSummary(), DefaultReportConfig())
	require.NoError(t, err)
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Earnings Announcement Event Study",
		"Bootstrap Inference",
		"Beats - misses",
		"<svg",
		"AMZN",
		"DataUnavailable",
		"no prices &lt;delisted&gt;",
		`class="significant"`,
	} {
		assert.Contains(t, html, want)
	}
}

func TestHTML_CustomTitle(t *testing.T) {
	cfg := DefaultReportConfig()
	cfg.Title = "Q3 <Tech>"
	html, err := HTML(sampleSummary(), cfg)
	require.NoError(t, err)
	assert.Contains(t, html, "Q3 &lt;Tech&gt;")
}

func TestHTML_EmptySummary(t *testing.T) {
	html, err := HTML(study.Summary{Overall: summary.Describe(nil)}, ReportConfig{})
	require.NoError(t, err)
	assert.NotContains(t, html, "Bootstrap Inference", "bootstrap section should be hidden without results")
}

func TestText_Basic(t *testing.T) {
	text := Text(sampleSummary(), DefaultReportConfig())
	for _, want := range []string{
		"OVERALL STATISTICS",
		"BEATS (surprise > 0, n=3)",
		"MISSES (surprise < 0, n=1)",
		"TOP 2 BEST PERFORMERS",
		"TOP 2 WORST PERFORMERS",
		"Surprise % vs CAR (Pearson)",
		"BOOTSTRAP INFERENCE",
		"***",
		"FAILED EVENTS (1)",
		"[DataUnavailable]",
		"Benchmark: ^GSPC",
	} {
		assert.Contains(t, text, want)
	}
}

func TestText_NoCorrelation(t *testing.T) {
	s := sampleSummary()
	s.HasCorrelation = false
	assert.Contains(t, Text(s, ReportConfig{}), "(Pearson): n/a")
}

func TestDefaultReportConfig(t *testing.T) {
	cfg := DefaultReportConfig()
	assert.Equal(t, FormatText, cfg.Format)
	assert.Equal(t, 0.05, cfg.Alpha)
	assert.Equal(t, 800, cfg.ChartCfg.Width)
}

// ════════════════════════════════════════════════════════════════════
// CSV + files
// ════════════════════════════════════════════════════════════════════

func TestWriteResultsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, sampleResults()))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 5, "header + 4 rows")
	assert.Equal(t, "CAR", recs[0][4])
	assert.Equal(t, []string{"INTC", "2025-10-23", "-8", "^GSPC", "-6.4", "14", "false"}, recs[3])
}

func TestWriteFailuresCSV(t *testing.T) {
	var buf bytes.Buffer
	failures := []models.FailureRecord{{Ticker: "XYZ", Kind: models.KindInputSchema, Reason: "row 3: bad, date"}}
	require.NoError(t, WriteFailuresCSV(&buf, failures))
	assert.Contains(t, buf.String(), `"row 3: bad, date"`)
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteFiles(dir, sampleSummary(), DefaultReportConfig())
	require.NoError(t, err)
	assert.Len(t, paths, 5)
	for _, name := range []string{FileResults, FileFailures, FileScatter, FileBars, FileHTML} {
		info, err := os.Stat(filepath.Join(dir, name))
		if assert.NoError(t, err, name) {
			assert.NotZero(t, info.Size(), name)
		}
	}
}

func TestReadResultsCSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, sampleResults()))
	got, err := ReadResultsCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleResults(), got)
}

func TestReadResultsCSV_KeepsFullPrecision(t *testing.T) {
	d := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	results := []models.EventResult{
		{Ticker: "AAA", Date: d, SurprisePct: 4e-05, Benchmark: "^GSPC", CAR: -3e-05, Observations: 9},
		{Ticker: "BBB", Date: d, SurprisePct: 1.0 / 3, Benchmark: "^GSPC", CAR: 0.1 + 0.2, Observations: 9},
		{Ticker: "CCC", Date: d, SurprisePct: -2.5, Benchmark: "^GSPC", CAR: -1.75, Observations: 9},
		{Ticker: "DDD", Date: d, SurprisePct: 7.125, Benchmark: "^GSPC", CAR: 2.0000001, Observations: 9},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, results))
	got, err := ReadResultsCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(results))
	for i := range results {
		assert.Equal(t, results[i].SurprisePct, got[i].SurprisePct, results[i].Ticker)
		assert.Equal(t, results[i].CAR, got[i].CAR, results[i].Ticker)
	}

	// Inference from the saved file must reproduce the original run.
	engine := bootstrap.Default()
	engine.Iterations = 200
	want, err := study.Infer(context.Background(), results, engine, 42)
	require.NoError(t, err)
	again, err := study.Infer(context.Background(), got, engine, 42)
	require.NoError(t, err)
	assert.Equal(t, want, again)
	require.NotNil(t, again.Beats)
	assert.Equal(t, 3, again.Beats.SampleSize)
}

func TestReadResultsCSV_BadRow(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"car", "AAPL,2024-05-02,1.5,^GSPC,abc"},
		{"observations", "AAPL,2024-05-02,1.5,^GSPC,0.2,many,false"},
		{"alignment", "AAPL,2024-05-02,1.5,^GSPC,0.2,5,maybe"},
		{"short", "AAPL,2024-05-02,1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := "Ticker,Date,Surprise_Pct,Benchmark,CAR,Observations,Alignment_Empty\n" + tt.row + "\n"
			_, err := ReadResultsCSV(strings.NewReader(in))
			assert.ErrorIs(t, err, models.ErrInputSchema)
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"a & b", "a &amp; b"},
		{"<b>test</b>", "&lt;b&gt;test&lt;/b&gt;"},
		{`"quoted"`, "&quot;quoted&quot;"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, escapeXML(tt.input), tt.input)
	}
}

func TestPlotArea(t *testing.T) {
	x, y, w, h := DefaultChartConfig().plotArea()
	assert.Equal(t, []int{70, 40, 690, 300}, []int{x, y, w, h})
}

func TestNewAxisRangeContainsZero(t *testing.T) {
	r := newAxisRange([]float64{3, 5})
	assert.LessOrEqual(t, r.min, 0.0)
	assert.Greater(t, newAxisRange(nil).span(), 0.0)
}

func TestEmptySVG(t *testing.T) {
	svg := emptySVG(ChartConfig{}, "Nothing <here>")
	assert.Contains(t, svg, `width="400"`)
	assert.Contains(t, svg, "Nothing &lt;here&gt;")
}

package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/seenimoa/eventstudy/internal/analysis/summary"
	"github.com/seenimoa/eventstudy/internal/study"
	"github.com/seenimoa/eventstudy/pkg/models"
	"github.com/seenimoa/eventstudy/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator: chart + template rendering
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatText ReportFormat = "text"
)

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Format   ReportFormat // output format (default: text)
	Title    string       // custom report title (optional)
	Author   string       // author name (optional)
	Alpha    float64      // significance level for the verdict column (default: 0.05)
	ChartCfg ChartConfig  // chart rendering config
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Format:   FormatText,
		Title:    "Earnings Announcement Event Study",
		Author:   "eventstudy",
		Alpha:    0.05,
		ChartCfg: DefaultChartConfig(),
	}
}

// ════════════════════════════════════════════════════════════════════
// Report Data, flattened for template rendering
// ════════════════════════════════════════════════════════════════════

// ReportData is the template model passed to HTML templates.
type ReportData struct {
	Title       string
	Author      string
	GeneratedAt string

	// Study parameters
	Benchmark  string
	Window     string
	ReturnType string

	// Counts
	Events   int
	Analyzed int
	Failed   int
	Beats    int
	Misses   int
	Positive int
	Negative int

	Overall     []StatRow
	BeatsStats  []StatRow
	MissesStats []StatRow
	Correlation string

	Bootstrap []BootstrapRow
	Top       []EventRow
	Bottom    []EventRow
	Results   []EventRow
	Failures  []FailureRow

	// Charts (embedded SVG strings)
	ScatterChart template.HTML
	BarChart     template.HTML
}

// StatRow is a label/value pair.
type StatRow struct {
	Label string
	Value string
}

// BootstrapRow is one bootstrap test.
type BootstrapRow struct {
	Test        string
	N           int
	Estimate    string
	CI          string
	PValue      string
	Stars       string
	Significant bool
}

// EventRow is one event result.
type EventRow struct {
	Ticker    string
	Date      string
	Surprise  string
	CAR       string
	CARClass  string // CSS class: positive, negative
	Obs       int
	Alignment string
}

// FailureRow is one failed event.
type FailureRow struct {
	Ticker string
	Date   string
	Kind   string
	Reason string
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

// HTML renders the summary as a standalone HTML page.
func HTML(s study.Summary, cfg ReportConfig) (string, error) {
	data := buildReportData(s, cfg)

	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// Text renders the summary as a plain-text report for the terminal.
func Text(s study.Summary, cfg ReportConfig) string {
	return renderTextReport(buildReportData(s, cfg))
}

// SurpriseVsCARChart plots each event's EPS surprise against its CAR.
func SurpriseVsCARChart(results []models.EventResult, cfg ChartConfig) string {
	cfg = cfg.withDefaults()
	cfg.Title = "Earnings Surprise vs Stock Return"
	cfg.XLabel = "Earnings Surprise (%)"
	cfg.YLabel = "Cumulative Abnormal Return (%)"

	points := make([]ScatterPoint, len(results))
	for i, r := range results {
		points[i] = ScatterPoint{
			X:     r.SurprisePct,
			Y:     r.CAR,
			Label: fmt.Sprintf("%s %s: surprise %s, CAR %s", r.Ticker, utils.FormatDate(r.Date), utils.FormatPct(r.SurprisePct), utils.FormatPct(r.CAR)),
		}
	}
	return ScatterChart(points, cfg)
}

// BeatsVsMissesChart compares the average CAR of beats and misses.
func BeatsVsMissesChart(s study.Summary, cfg ChartConfig) string {
	cfg = cfg.withDefaults()
	cfg.Width = 600
	cfg.Title = "Average CAR: Beats vs Misses"
	cfg.YLabel = "Average CAR (%)"

	var items []BarItem
	if s.Beats.Count > 0 {
		items = append(items, BarItem{Label: fmt.Sprintf("Beats (n=%d)", s.Beats.Count), Value: s.Beats.Mean, Color: "#4caf50"})
	}
	if s.Misses.Count > 0 {
		items = append(items, BarItem{Label: fmt.Sprintf("Misses (n=%d)", s.Misses.Count), Value: s.Misses.Mean, Color: "#ef5350"})
	}
	return BarChart(items, cfg)
}

// WindowChart plots daily and cumulative abnormal returns, in percent,
// across one event window.
func WindowChart(w models.EventWindow, cfg ChartConfig) string {
	cfg = cfg.withDefaults()
	cfg.Title = fmt.Sprintf("%s vs %s around %s", w.Ticker, w.Benchmark, utils.FormatDate(w.AnnouncementDate))
	cfg.XLabel = "Calendar days from announcement"
	cfg.YLabel = "Return (%)"

	daily := make([]float64, len(w.Points))
	cum := make([]float64, len(w.Points))
	labels := make([]string, len(w.Points))
	sum := 0.0
	for i, p := range w.Points {
		daily[i] = 100 * p.AbnormalReturn
		sum += daily[i]
		cum[i] = sum
		labels[i] = fmt.Sprintf("%+d", p.DaysFromAnnouncement)
	}
	return LineChart([]LineChartSeries{
		{Name: "Abnormal return", Values: daily, Color: "#90caf9"},
		{Name: "Cumulative", Values: cum, Color: "#1565c0"},
	}, labels, cfg)
}

// ════════════════════════════════════════════════════════════════════
// Internal: build template data
// ════════════════════════════════════════════════════════════════════

func buildReportData(s study.Summary, cfg ReportConfig) ReportData {
	def := DefaultReportConfig()
	if cfg.Title == "" {
		cfg.Title = def.Title
	}
	if cfg.Author == "" {
		cfg.Author = def.Author
	}
	if cfg.Alpha <= 0 {
		cfg.Alpha = def.Alpha
	}

	results := s.Outcome.Results
	returnType := "simple"
	if s.Options.UseLog {
		returnType = "log"
	}

	data := ReportData{
		Title:       cfg.Title,
		Author:      cfg.Author,
		GeneratedAt: s.GeneratedAt.Format("02 Jan 2006, 15:04 MST"),
		Benchmark:   s.Options.Benchmark,
		Window:      fmt.Sprintf("[-%d, +%d] calendar days", s.Options.Before, s.Options.After),
		ReturnType:  returnType,

		Events:   s.Outcome.Total(),
		Analyzed: len(results),
		Failed:   len(s.Outcome.Failures),
		Beats:    s.Beats.Count,
		Misses:   s.Misses.Count,
		Positive: s.PositiveCAR,
		Negative: s.NegativeCAR,

		Overall:     statRows(s.Overall),
		BeatsStats:  statRows(s.Beats),
		MissesStats: statRows(s.Misses),
		Correlation: "n/a",

		Top:    eventRows(s.Top),
		Bottom: eventRows(s.Bottom),
	}
	if s.HasCorrelation {
		data.Correlation = utils.FormatFloat(s.Correlation, 3)
	}

	inf := s.Inference
	data.Bootstrap = bootstrapRows(cfg.Alpha, []namedResult{
		{"Mean CAR (all)", inf.All},
		{"Mean CAR (beats)", inf.Beats},
		{"Mean CAR (misses)", inf.Misses},
		{"Beats - misses", inf.BeatsVsMisses},
	})

	data.Results = eventRows(results)
	for _, f := range s.Outcome.Failures {
		data.Failures = append(data.Failures, FailureRow{
			Ticker: f.Ticker,
			Date:   utils.FormatDate(f.Date),
			Kind:   string(f.Kind),
			Reason: f.Reason,
		})
	}

	data.ScatterChart = template.HTML(SurpriseVsCARChart(results, cfg.ChartCfg))
	data.BarChart = template.HTML(BeatsVsMissesChart(s, cfg.ChartCfg))
	return data
}

type namedResult struct {
	name string
	r    *models.BootstrapResult
}

func bootstrapRows(alpha float64, tests []namedResult) []BootstrapRow {
	var rows []BootstrapRow
	for _, t := range tests {
		if t.r == nil {
			continue
		}
		rows = append(rows, BootstrapRow{
			Test:        t.name,
			N:           t.r.SampleSize,
			Estimate:    utils.FormatPct(t.r.PointEstimate),
			CI:          fmt.Sprintf("[%s, %s]", utils.FormatPct(t.r.CILower), utils.FormatPct(t.r.CIUpper)),
			PValue:      utils.FormatPValue(t.r.PValue),
			Stars:       utils.SignificanceStars(t.r.PValue),
			Significant: t.r.Significant(alpha),
		})
	}
	return rows
}

func statRows(st summary.Stats) []StatRow {
	if st.Count == 0 {
		return []StatRow{{Label: "Count", Value: "0"}}
	}
	return []StatRow{
		{Label: "Count", Value: fmt.Sprintf("%d", st.Count)},
		{Label: "Mean CAR", Value: utils.FormatPct(st.Mean)},
		{Label: "Median CAR", Value: utils.FormatPct(st.Median)},
		{Label: "Std Dev", Value: utils.FormatFloat(st.StdDev, 2) + "%"},
		{Label: "Min", Value: utils.FormatPct(st.Min)},
		{Label: "Max", Value: utils.FormatPct(st.Max)},
	}
}

func eventRows(results []models.EventResult) []EventRow {
	rows := make([]EventRow, len(results))
	for i, r := range results {
		class := "positive"
		if r.CAR < 0 {
			class = "negative"
		}
		align := ""
		if r.AlignmentEmpty {
			align = "empty window"
		}
		rows[i] = EventRow{
			Ticker:    r.Ticker,
			Date:      utils.FormatDate(r.Date),
			Surprise:  utils.FormatPct(r.SurprisePct),
			CAR:       utils.FormatPct(r.CAR),
			CARClass:  class,
			Obs:       r.Observations,
			Alignment: align,
		}
	}
	return rows
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderTextReport(d ReportData) string {
	var sb strings.Builder
	line := strings.Repeat("═", 72)
	thinLine := strings.Repeat("─", 72)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("  Generated: %s | Author: %s\n", d.GeneratedAt, d.Author))
	sb.WriteString(fmt.Sprintf("  Benchmark: %s | Window: %s | Returns: %s\n", d.Benchmark, d.Window, d.ReturnType))
	sb.WriteString(line + "\n\n")

	sb.WriteString(fmt.Sprintf("  Events: %d | Analyzed: %d | Failed: %d\n", d.Events, d.Analyzed, d.Failed))
	sb.WriteString(fmt.Sprintf("  Positive CAR: %d | Negative CAR: %d\n", d.Positive, d.Negative))
	sb.WriteString(thinLine + "\n")

	writeStats := func(title string, rows []StatRow) {
		sb.WriteString(fmt.Sprintf("\n  ■ %s\n", title))
		for _, r := range rows {
			sb.WriteString(fmt.Sprintf("    %-14s %s\n", r.Label, r.Value))
		}
	}
	writeStats("OVERALL STATISTICS", d.Overall)
	writeStats(fmt.Sprintf("BEATS (surprise > 0, n=%d)", d.Beats), d.BeatsStats)
	writeStats(fmt.Sprintf("MISSES (surprise < 0, n=%d)", d.Misses), d.MissesStats)
	sb.WriteString(thinLine + "\n")

	writeEvents := func(title string, rows []EventRow) {
		if len(rows) == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf("\n  ■ %s\n", title))
		sb.WriteString(fmt.Sprintf("    %-8s %-10s %10s %10s\n", "Ticker", "Date", "Surprise", "CAR"))
		for _, r := range rows {
			sb.WriteString(fmt.Sprintf("    %-8s %-10s %10s %10s\n", r.Ticker, r.Date, r.Surprise, r.CAR))
		}
	}
	writeEvents(fmt.Sprintf("TOP %d BEST PERFORMERS", len(d.Top)), d.Top)
	writeEvents(fmt.Sprintf("TOP %d WORST PERFORMERS", len(d.Bottom)), d.Bottom)

	sb.WriteString("\n  ■ CORRELATION\n")
	sb.WriteString(fmt.Sprintf("    Surprise %% vs CAR (Pearson): %s\n", d.Correlation))
	sb.WriteString(thinLine + "\n")

	if len(d.Bootstrap) > 0 {
		sb.WriteString("\n  ■ BOOTSTRAP INFERENCE\n")
		sb.WriteString(fmt.Sprintf("    %-18s %4s %9s  %-20s %8s\n", "Test", "N", "Estimate", "CI", "p-value"))
		for _, b := range d.Bootstrap {
			sb.WriteString(fmt.Sprintf("    %-18s %4d %9s  %-20s %8s %s\n", b.Test, b.N, b.Estimate, b.CI, b.PValue, b.Stars))
		}
		sb.WriteString("    (* p<0.10, ** p<0.05, *** p<0.01)\n")
		sb.WriteString(thinLine + "\n")
	}

	if len(d.Failures) > 0 {
		sb.WriteString(fmt.Sprintf("\n  ■ FAILED EVENTS (%d)\n", len(d.Failures)))
		for _, f := range d.Failures {
			sb.WriteString(fmt.Sprintf("    %-8s %-10s [%s] %s\n", f.Ticker, f.Date, f.Kind, f.Reason))
		}
		sb.WriteString(thinLine + "\n")
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Windows use calendar days; weekends and holidays inside a window\n")
	sb.WriteString("  simply contribute no observation. For research use only.\n")
	sb.WriteString(line + "\n")

	return sb.String()
}

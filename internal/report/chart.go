// Package report renders event study results as a console report, SVG
// charts, an HTML page and CSV files.
package report

import (
	"fmt"
	"math"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 40)
	MarginBottom int    // bottom margin (default: 60)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
	XLabel       string // x axis caption
	YLabel       string // y axis caption
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  40,
		MarginBottom: 60,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// withDefaults fills an unset config, keeping its labels.
func (c ChartConfig) withDefaults() ChartConfig {
	if c.Width != 0 {
		return c
	}
	d := DefaultChartConfig()
	d.Title, d.XLabel, d.YLabel = c.Title, c.XLabel, c.YLabel
	return d
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// axisRange is a padded value range that always contains zero.
type axisRange struct{ min, max float64 }

func newAxisRange(values []float64) axisRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	span := hi - lo
	if span < 0.001 {
		span = 1
	}
	return axisRange{lo - span*0.08, hi + span*0.08}
}

func (r axisRange) span() float64 { return r.max - r.min }

// ════════════════════════════════════════════════════════════════════
// Scatter Chart
// ════════════════════════════════════════════════════════════════════

// ScatterPoint is one point of a scatter chart.
type ScatterPoint struct {
	X, Y  float64
	Label string // tooltip, optional
}

// ScatterChart plots points with dashed zero axes, as used for earnings
// surprise against CAR.
func ScatterChart(points []ScatterPoint, cfg ChartConfig) string {
	cfg = cfg.withDefaults()
	if len(points) == 0 {
		return emptySVG(cfg, "No data")
	}
	if cfg.Title == "" {
		cfg.Title = "Scatter"
	}

	px, py, pw, ph := cfg.plotArea()
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	xr, yr := newAxisRange(xs), newAxisRange(ys)

	toX := func(v float64) float64 { return float64(px) + (v-xr.min)/xr.span()*float64(pw) }
	toY := func(v float64) float64 { return float64(py+ph) - (v-yr.min)/yr.span()*float64(ph) }

	var sb strings.Builder
	writeFrame(&sb, cfg)
	writeYGrid(&sb, cfg, yr, 5)
	writeXTicks(&sb, cfg, xr, 6)

	// Zero axes
	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#e53935" stroke-dasharray="6,4" stroke-width="1"/>`,
		px, toY(0), px+pw, toY(0)))
	sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#e53935" stroke-dasharray="6,4" stroke-width="1"/>`,
		toX(0), py, toX(0), py+ph))

	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="#2196f3" fill-opacity="0.6">`, toX(p.X), toY(p.Y)))
		if p.Label != "" {
			sb.WriteString("<title>" + escapeXML(p.Label) + "</title>")
		}
		sb.WriteString("</circle>")
	}

	writeAxisLabels(&sb, cfg)
	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Bar Chart (Vertical)
// ════════════════════════════════════════════════════════════════════

// BarItem represents a single bar in a bar chart.
type BarItem struct {
	Label string
	Value float64
	Color string // optional
}

// BarChart draws vertical bars from a zero baseline. Positive bars default
// to green and negative ones to red.
func BarChart(items []BarItem, cfg ChartConfig) string {
	cfg = cfg.withDefaults()
	if len(items) == 0 {
		return emptySVG(cfg, "No data")
	}
	if cfg.Title == "" {
		cfg.Title = "Comparison"
	}

	px, py, pw, ph := cfg.plotArea()
	values := make([]float64, len(items))
	for i, it := range items {
		values[i] = it.Value
	}
	yr := newAxisRange(values)
	toY := func(v float64) float64 { return float64(py+ph) - (v-yr.min)/yr.span()*float64(ph) }

	slot := float64(pw) / float64(len(items))
	barW := math.Min(slot*0.6, 120)

	var sb strings.Builder
	writeFrame(&sb, cfg)
	writeYGrid(&sb, cfg, yr, 5)

	zeroY := toY(0)
	for i, it := range items {
		cx := float64(px) + slot*float64(i) + slot/2
		color := it.Color
		if color == "" {
			color = "#4caf50"
			if it.Value < 0 {
				color = "#ef5350"
			}
		}
		top, h := toY(it.Value), zeroY-toY(it.Value)
		if h < 0 {
			top, h = zeroY, -h
		}
		if !math.IsNaN(it.Value) {
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.7" rx="2"/>`,
				cx-barW/2, top, barW, h, color))
		}

		// Value above/below the bar
		vy := toY(it.Value) - 6
		if it.Value < 0 {
			vy = toY(it.Value) + 14
		}
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			cx, vy, cfg.FontSize, cfg.TextColor, fmtAxis(it.Value)))

		// Category label
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			cx, py+ph+18, cfg.FontSize+1, cfg.TextColor, escapeXML(it.Label)))
	}

	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#000" stroke-width="1"/>`,
		px, zeroY, px+pw, zeroY))

	writeAxisLabels(&sb, cfg)
	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Line Chart
// ════════════════════════════════════════════════════════════════════

// LineChartSeries represents a named data series for line charts.
type LineChartSeries struct {
	Name   string
	Values []float64
	Color  string // hex color (optional, auto-assigned if empty)
}

// LineChart generates an SVG line chart with one or more series.
// Labels are optional X-axis labels corresponding to data points.
func LineChart(series []LineChartSeries, labels []string, cfg ChartConfig) string {
	cfg = cfg.withDefaults()
	if len(series) == 0 {
		return emptySVG(cfg, "No data")
	}
	if cfg.Title == "" {
		cfg.Title = "Line Chart"
	}

	px, py, pw, ph := cfg.plotArea()

	var all []float64
	maxLen := 0
	for _, s := range series {
		maxLen = max(maxLen, len(s.Values))
		all = append(all, s.Values...)
	}
	if maxLen == 0 {
		return emptySVG(cfg, "No data points")
	}
	yr := newAxisRange(all)

	step := float64(pw)
	if maxLen > 1 {
		step = float64(pw) / float64(maxLen-1)
	}
	toX := func(i int) float64 { return float64(px) + float64(i)*step }
	toY := func(v float64) float64 { return float64(py+ph) - (v-yr.min)/yr.span()*float64(ph) }

	var sb strings.Builder
	writeFrame(&sb, cfg)
	writeYGrid(&sb, cfg, yr, 5)

	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#999" stroke-width="1"/>`,
		px, toY(0), px+pw, toY(0)))

	defaultColors := []string{"#2196f3", "#ff9800", "#4caf50", "#e91e63", "#9c27b0", "#00bcd4"}
	for si, s := range series {
		color := s.Color
		if color == "" {
			color = defaultColors[si%len(defaultColors)]
		}

		var pathParts []string
		for i, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			cmd := "L"
			if len(pathParts) == 0 {
				cmd = "M"
			}
			pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, toX(i), toY(v)))
		}
		if len(pathParts) > 1 {
			sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				strings.Join(pathParts, " "), color))
		}

		// Legend
		ly := py + 10 + si*16
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
			px+10, ly, px+30, ly, color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
			px+35, ly+4, cfg.TextColor, escapeXML(s.Name)))
	}

	// X-axis labels
	if len(labels) > 0 {
		interval := max(maxLen/8, 1)
		for i := 0; i < len(labels) && i < maxLen; i += interval {
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
				toX(i), py+ph+18, cfg.FontSize-1, cfg.TextColor, escapeXML(labels[i])))
		}
	}

	writeAxisLabels(&sb, cfg)
	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

// writeFrame writes the header, background and title.
func writeFrame(sb *strings.Builder, cfg ChartConfig) {
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="24" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))
}

func writeYGrid(sb *strings.Builder, cfg ChartConfig, yr axisRange, lines int) {
	px, py, pw, ph := cfg.plotArea()
	for i := 0; i <= lines; i++ {
		val := yr.min + yr.span()*float64(i)/float64(lines)
		y := float64(py+ph) - float64(ph)*float64(i)/float64(lines)
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, fmtAxis(val)))
	}
}

func writeXTicks(sb *strings.Builder, cfg ChartConfig, xr axisRange, ticks int) {
	px, py, pw, ph := cfg.plotArea()
	for i := 0; i <= ticks; i++ {
		val := xr.min + xr.span()*float64(i)/float64(ticks)
		x := float64(px) + float64(pw)*float64(i)/float64(ticks)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			x, py, x, py+ph, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			x, py+ph+16, cfg.FontSize, cfg.TextColor, fmtAxis(val)))
	}
}

func writeAxisLabels(sb *strings.Builder, cfg ChartConfig) {
	px, py, pw, ph := cfg.plotArea()
	if cfg.XLabel != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			px+pw/2, cfg.Height-12, cfg.FontSize+1, cfg.TextColor, escapeXML(cfg.XLabel)))
	}
	if cfg.YLabel != "" {
		cy := py + ph/2
		sb.WriteString(fmt.Sprintf(`<text x="16" y="%d" font-size="%d" fill="%s" text-anchor="middle" transform="rotate(-90,16,%d)">%s</text>`,
			cy, cfg.FontSize+1, cfg.TextColor, cy, escapeXML(cfg.YLabel)))
	}
}

func fmtAxis(v float64) string {
	if math.Abs(v) >= 100 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

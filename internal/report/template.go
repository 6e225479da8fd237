package report

// ReportTemplate is the HTML template for the event study report.
// It is embedded as a Go constant.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 960px;
    margin: 0 auto;
    padding: 20px;
  }
  h1, h2, h3 { font-weight: 600; }
  h1 { font-size: 1.5rem; margin-bottom: 4px; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  h3 { font-size: 1rem; margin: 16px 0 8px; }
  .muted { color: var(--muted); font-size: 0.85rem; }

  /* Header */
  .header {
    display: flex;
    justify-content: space-between;
    align-items: flex-start;
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }
  .header-right { text-align: right; }

  /* Count bar */
  .count-bar {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(120px, 1fr));
    gap: 8px;
    background: var(--section-bg);
    padding: 12px;
    border-radius: 8px;
    margin-bottom: 16px;
  }
  .count-item { text-align: center; }
  .count-item .label { font-size: 0.75rem; color: var(--muted); text-transform: uppercase; }
  .count-item .value { font-size: 1.1rem; font-weight: 600; }
  .positive { color: var(--green); }
  .negative { color: var(--red); }

  /* Stat grid */
  .stat-grid {
    display: grid;
    grid-template-columns: repeat(3, 1fr);
    gap: 12px;
  }
  .stat-card { background: var(--section-bg); padding: 10px 12px; border-radius: 6px; }
  .stat-card .row { display: flex; justify-content: space-between; font-size: 0.9rem; }
  .stat-card .row .label { color: var(--muted); }

  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th { background: var(--section-bg); text-align: left; padding: 8px; font-weight: 600; }
  td { padding: 8px; border-bottom: 1px solid var(--border); }
  td.num, th.num { text-align: right; font-variant-numeric: tabular-nums; }
  tr.significant td { font-weight: 600; }

  .chart-container { margin: 12px 0; overflow-x: auto; }
  .chart-container svg { max-width: 100%; height: auto; }
  .section { margin: 20px 0; }

  .footer {
    margin-top: 30px;
    padding-top: 12px;
    border-top: 2px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }

  @media print {
    body { max-width: 100%; padding: 10px; }
    .section { page-break-inside: avoid; }
  }
</style>
</head>
<body>

<!-- ═══════ HEADER ═══════ -->
<div class="header">
  <div>
    <h1>{{.Title}}</h1>
    <p class="muted">Benchmark {{.Benchmark}} · {{.Window}} · {{.ReturnType}} returns</p>
  </div>
  <div class="header-right">
    <p class="muted">{{.GeneratedAt}}</p>
    <p class="muted">{{.Author}}</p>
  </div>
</div>

<!-- ═══════ COUNTS ═══════ -->
<div class="count-bar">
  <div class="count-item"><div class="label">Events</div><div class="value">{{.Events}}</div></div>
  <div class="count-item"><div class="label">Analyzed</div><div class="value">{{.Analyzed}}</div></div>
  <div class="count-item"><div class="label">Failed</div><div class="value">{{.Failed}}</div></div>
  <div class="count-item"><div class="label">Beats</div><div class="value">{{.Beats}}</div></div>
  <div class="count-item"><div class="label">Misses</div><div class="value">{{.Misses}}</div></div>
  <div class="count-item"><div class="label">CAR &gt; 0</div><div class="value positive">{{.Positive}}</div></div>
  <div class="count-item"><div class="label">CAR &lt; 0</div><div class="value negative">{{.Negative}}</div></div>
</div>

<!-- ═══════ STATISTICS ═══════ -->
<div class="section">
  <h2>Cumulative Abnormal Returns</h2>
  <div class="stat-grid">
    <div class="stat-card"><h3>All events</h3>
      {{range .Overall}}<div class="row"><span class="label">{{.Label}}</span><span>{{.Value}}</span></div>{{end}}
    </div>
    <div class="stat-card"><h3>Beats</h3>
      {{range .BeatsStats}}<div class="row"><span class="label">{{.Label}}</span><span>{{.Value}}</span></div>{{end}}
    </div>
    <div class="stat-card"><h3>Misses</h3>
      {{range .MissesStats}}<div class="row"><span class="label">{{.Label}}</span><span>{{.Value}}</span></div>{{end}}
    </div>
  </div>
  <p class="muted" style="margin-top:8px">Correlation of surprise % and CAR (Pearson): {{.Correlation}}</p>
</div>

<!-- ═══════ BOOTSTRAP ═══════ -->
{{if .Bootstrap}}
<div class="section">
  <h2>Bootstrap Inference</h2>
  <table>
    <tr><th>Test</th><th class="num">N</th><th class="num">Estimate</th><th class="num">CI</th><th class="num">p-value</th><th></th></tr>
    {{range .Bootstrap}}
    <tr{{if .Significant}} class="significant"{{end}}>
      <td>{{.Test}}</td><td class="num">{{.N}}</td><td class="num">{{.Estimate}}</td>
      <td class="num">{{.CI}}</td><td class="num">{{.PValue}}</td><td>{{.Stars}}</td>
    </tr>
    {{end}}
  </table>
  <p class="muted">* p&lt;0.10, ** p&lt;0.05, *** p&lt;0.01</p>
</div>
{{end}}

<!-- ═══════ CHARTS ═══════ -->
<div class="section">
  <h2>Charts</h2>
  <div class="chart-container">{{.ScatterChart}}</div>
  <div class="chart-container">{{.BarChart}}</div>
</div>

<!-- ═══════ TOP / BOTTOM ═══════ -->
{{if .Top}}
<div class="section">
  <h2>Best Performers</h2>
  <table>
    <tr><th>Ticker</th><th>Date</th><th class="num">Surprise</th><th class="num">CAR</th></tr>
    {{range .Top}}<tr><td>{{.Ticker}}</td><td>{{.Date}}</td><td class="num">{{.Surprise}}</td><td class="num {{.CARClass}}">{{.CAR}}</td></tr>{{end}}
  </table>
  <h2>Worst Performers</h2>
  <table>
    <tr><th>Ticker</th><th>Date</th><th class="num">Surprise</th><th class="num">CAR</th></tr>
    {{range .Bottom}}<tr><td>{{.Ticker}}</td><td>{{.Date}}</td><td class="num">{{.Surprise}}</td><td class="num {{.CARClass}}">{{.CAR}}</td></tr>{{end}}
  </table>
</div>
{{end}}

<!-- ═══════ ALL RESULTS ═══════ -->
<div class="section">
  <h2>All Events</h2>
  <table>
    <tr><th>Ticker</th><th>Date</th><th class="num">Surprise</th><th class="num">CAR</th><th class="num">Obs</th><th></th></tr>
    {{range .Results}}<tr><td>{{.Ticker}}</td><td>{{.Date}}</td><td class="num">{{.Surprise}}</td><td class="num {{.CARClass}}">{{.CAR}}</td><td class="num">{{.Obs}}</td><td class="muted">{{.Alignment}}</td></tr>{{end}}
  </table>
</div>

{{if .Failures}}
<div class="section">
  <h2>Failed Events</h2>
  <table>
    <tr><th>Ticker</th><th>Date</th><th>Kind</th><th>Reason</th></tr>
    {{range .Failures}}<tr><td>{{.Ticker}}</td><td>{{.Date}}</td><td>{{.Kind}}</td><td class="muted">{{.Reason}}</td></tr>{{end}}
  </table>
</div>
{{end}}

<div class="footer">
  Event windows use calendar days around each announcement. For research use only.
</div>

</body>
</html>
`

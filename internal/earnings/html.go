package earnings

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/eventstudy/pkg/models"
)

// LoadHTML reads the first HTML table whose header row carries the earnings
// columns. Saved broker and screener pages usually hold several tables.
func LoadHTML(r io.Reader) (Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("parse HTML: %w", err)
	}

	var (
		found   bool
		table   Table
		lastErr = fmt.Errorf("%w: no table found", models.ErrInputSchema)
	)
	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		header, rows := readTable(tbl)
		idx, err := columnIndex(header)
		if err != nil {
			lastErr = err
			return true
		}
		table = build(idx, rows, func(n int) int { return n + 2 })
		found = true
		return false
	})
	if !found {
		return Table{}, lastErr
	}
	return table, nil
}

// readTable splits a table into its header cells and body rows. The header is
// the thead row if present, otherwise the first row.
func readTable(tbl *goquery.Selection) (header []string, rows [][]string) {
	trs := tbl.Find("tr")
	start := 0
	if th := tbl.Find("thead tr").First(); th.Length() > 0 {
		header = cells(th)
		start = trs.IndexOfSelection(th) + 1
	} else if trs.Length() > 0 {
		header = cells(trs.First())
		start = 1
	}

	trs.Slice(start, trs.Length()).Each(func(_ int, tr *goquery.Selection) {
		row := cells(tr)
		if len(row) == 0 || strings.Join(row, "") == "" {
			return
		}
		rows = append(rows, row)
	})
	return header, rows
}

func cells(tr *goquery.Selection) []string {
	var out []string
	tr.Find("th, td").Each(func(_ int, c *goquery.Selection) {
		out = append(out, strings.TrimSpace(c.Text()))
	})
	return out
}

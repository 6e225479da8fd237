package earnings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/seenimoa/eventstudy/pkg/models"
)

// LoadCSV reads a comma separated earnings table.
func LoadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, fmt.Errorf("%w: earnings table is empty", models.ErrInputSchema)
		}
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return Table{}, err
	}

	// Blank lines are skipped by the reader, so rows are numbered by the
	// line they start on rather than by position.
	var (
		rows  [][]string
		lines []int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read earnings rows: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
	return build(idx, rows, func(n int) int { return lines[n] }), nil
}

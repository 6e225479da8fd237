// Package utils provides common utility functions for the event study:
// calendar date handling, ticker normalisation and number formatting.
package utils

import (
	"fmt"
	"math"
)

// FormatPct formats a value that is already in percent, e.g. 1.234 → "+1.23%".
func FormatPct(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", v)
}

// FormatFloat formats v with the given number of decimals; NaN becomes "n/a".
func FormatFloat(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", decimals, v)
}

// FormatPValue formats a p-value, collapsing tiny values to "<0.0001".
func FormatPValue(p float64) string {
	switch {
	case math.IsNaN(p):
		return "n/a"
	case p < 0.0001:
		return "<0.0001"
	default:
		return fmt.Sprintf("%.4f", p)
	}
}

// SignificanceStars returns the conventional star marker for a p-value.
func SignificanceStars(p float64) string {
	switch {
	case p < 0.01:
		return "***"
	case p < 0.05:
		return "**"
	case p < 0.10:
		return "*"
	default:
		return ""
	}
}

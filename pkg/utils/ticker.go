package utils

import (
	"strings"
)

// Common index aliases mapped to their Yahoo Finance symbols.
var indexAliases = map[string]string{
	"SPX":     "^GSPC",
	"SP500":   "^GSPC",
	"S&P500":  "^GSPC",
	"S&P 500": "^GSPC",
	"NDX":     "^NDX",
	"NASDAQ":  "^IXIC",
	"DJI":     "^DJI",
	"DOW":     "^DJI",
	"RUT":     "^RUT",
	"VIX":     "^VIX",
}

// NormalizeTicker normalizes a user-input ticker: trims, uppercases, strips a
// leading "$" and resolves common index aliases.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")

	if idx, ok := indexAliases[ticker]; ok {
		return idx
	}
	return ticker
}

// Yahoo Finance exchange suffixes that must not be read as share classes.
var exchangeSuffixes = map[string]bool{
	"NS": true, "BO": true, "L": true, "TO": true, "V": true, "AX": true,
	"HK": true, "DE": true, "PA": true, "T": true, "SW": true, "AS": true,
	"MI": true, "MC": true, "SI": true, "KS": true, "SA": true, "F": true,
}

// ToYFinanceTicker converts a ticker to Yahoo Finance format.
// Share-class dots become dashes (BRK.B → BRK-B); exchange suffixes
// such as .NS, .L or .TO are kept.
func ToYFinanceTicker(ticker string) string {
	ticker = NormalizeTicker(ticker)
	if IsIndex(ticker) {
		return ticker
	}

	dot := strings.LastIndex(ticker, ".")
	if dot < 0 {
		return ticker
	}
	suffix := ticker[dot+1:]
	if len(suffix) == 1 && !exchangeSuffixes[suffix] {
		return ticker[:dot] + "-" + suffix
	}
	return ticker
}

// IsIndex reports whether the ticker names an index rather than a security.
func IsIndex(ticker string) bool {
	return strings.HasPrefix(NormalizeTicker(ticker), "^")
}

// FileSafeTicker returns a ticker usable as a file name stem (^GSPC → GSPC).
func FileSafeTicker(ticker string) string {
	t := NormalizeTicker(ticker)
	t = strings.TrimPrefix(t, "^")
	return strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(t)
}

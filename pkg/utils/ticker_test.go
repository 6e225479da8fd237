package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct{ in, want string }{
		{"aapl", "AAPL"},
		{"  msft ", "MSFT"},
		{"$nvda", "NVDA"},
		{"spx", "^GSPC"},
		{"S&P 500", "^GSPC"},
		{"^gspc", "^GSPC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTicker(tt.in), tt.in)
	}
}

func TestToYFinanceTicker(t *testing.T) {
	tests := []struct{ in, want string }{
		{"AAPL", "AAPL"},
		{"brk.b", "BRK-B"},
		{"RELIANCE.NS", "RELIANCE.NS"},
		{"VOD.L", "VOD.L"},
		{"SHOP.TO", "SHOP.TO"},
		{"^GSPC", "^GSPC"},
		{"sp500", "^GSPC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToYFinanceTicker(tt.in), tt.in)
	}
}

func TestIsIndex(t *testing.T) {
	assert.True(t, IsIndex("^GSPC"))
	assert.True(t, IsIndex("spx"))
	assert.False(t, IsIndex("AAPL"))
}

func TestFileSafeTicker(t *testing.T) {
	tests := []struct{ in, want string }{
		{"^GSPC", "GSPC"},
		{"brk.b", "BRK.B"},
		{"EUR/USD", "EUR_USD"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileSafeTicker(tt.in), tt.in)
	}
}

package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnnouncementEvent(t *testing.T) {
	date := time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC)

	ev, err := NewAnnouncementEvent(" AAPL ", date, 1.60, 1.85)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", ev.Ticker)
	assert.InDelta(t, 15.625, ev.SurprisePct, 1e-9)
}

func TestNewAnnouncementEvent_NegativeExpected(t *testing.T) {
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	// A smaller loss than expected is a beat.
	ev, err := NewAnnouncementEvent("RIVN", date, -0.50, -0.40)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, ev.SurprisePct, 1e-9)
}

func TestAnnouncementEventValidate(t *testing.T) {
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		ev   AnnouncementEvent
	}{
		{"empty ticker", AnnouncementEvent{AnnouncementDate: date, ExpectedEPS: 1}},
		{"zero date", AnnouncementEvent{Ticker: "MSFT", ExpectedEPS: 1}},
		{"zero expected", AnnouncementEvent{Ticker: "MSFT", AnnouncementDate: date}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInputSchema)
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, ""},
		{fmt.Errorf("fetch AAPL: %w", ErrDataUnavailable), KindDataUnavailable},
		{fmt.Errorf("returns: %w", ErrEmptyInput), KindEmptyInput},
		{ErrAlignmentEmpty, KindAlignmentEmpty},
		{fmt.Errorf("row 3: %w", ErrInputSchema), KindInputSchema},
		{context.Canceled, KindCancelled},
		{context.DeadlineExceeded, KindProvider},
		{errors.New("boom"), KindProvider},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "KindOf(%v)", tt.err)
	}
}

func TestEventWindowEmpty(t *testing.T) {
	assert.True(t, EventWindow{}.Empty())
	assert.False(t, EventWindow{Points: []WindowPoint{{}}}.Empty())
}

func TestBootstrapResultSignificant(t *testing.T) {
	r := BootstrapResult{PValue: 0.03}
	assert.True(t, r.Significant(0.05))
	assert.False(t, r.Significant(0.01))
}

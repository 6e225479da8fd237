// Package models defines the core data structures used throughout the event study.
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// PricePoint is a single daily close as delivered by a price provider.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// ReturnPoint is the return realised on Date relative to the previous close.
type ReturnPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// AnnouncementEvent is one earnings announcement with its EPS surprise.
type AnnouncementEvent struct {
	Ticker           string    `json:"ticker"`
	AnnouncementDate time.Time `json:"announcement_date"`
	ExpectedEPS      float64   `json:"expected_eps"`
	ActualEPS        float64   `json:"actual_eps"`
	SurprisePct      float64   `json:"surprise_pct"` // (actual - expected) / |expected| * 100
}

// NewAnnouncementEvent builds a validated event and computes its surprise.
func NewAnnouncementEvent(ticker string, date time.Time, expected, actual float64) (AnnouncementEvent, error) {
	ev := AnnouncementEvent{
		Ticker:           strings.TrimSpace(ticker),
		AnnouncementDate: date,
		ExpectedEPS:      expected,
		ActualEPS:        actual,
	}
	if err := ev.Validate(); err != nil {
		return AnnouncementEvent{}, err
	}
	ev.SurprisePct = SurprisePct(expected, actual)
	return ev, nil
}

// Validate checks the invariants of an announcement record.
func (e AnnouncementEvent) Validate() error {
	switch {
	case e.Ticker == "":
		return fmt.Errorf("%w: empty ticker", ErrInputSchema)
	case e.AnnouncementDate.IsZero():
		return fmt.Errorf("%w: %s: missing announcement date", ErrInputSchema, e.Ticker)
	case e.ExpectedEPS == 0:
		return fmt.Errorf("%w: %s: expected EPS is zero", ErrInputSchema, e.Ticker)
	case math.IsNaN(e.ExpectedEPS) || math.IsNaN(e.ActualEPS):
		return fmt.Errorf("%w: %s: EPS is NaN", ErrInputSchema, e.Ticker)
	}
	return nil
}

// SurprisePct returns the earnings surprise in percent of |expected|.
func SurprisePct(expected, actual float64) float64 {
	return (actual - expected) / math.Abs(expected) * 100
}

// WindowPoint is one aligned trading date inside an event window.
type WindowPoint struct {
	Date                 time.Time `json:"date"`
	DaysFromAnnouncement int       `json:"days_from_announcement"` // calendar days, not trading days
	AssetReturn          float64   `json:"asset_return"`
	BenchmarkReturn      float64   `json:"benchmark_return"`
	AbnormalReturn       float64   `json:"abnormal_return"`
}

// EventWindow holds the aligned abnormal returns around one announcement.
type EventWindow struct {
	Ticker           string        `json:"ticker"`
	Benchmark        string        `json:"benchmark"`
	AnnouncementDate time.Time     `json:"announcement_date"`
	WindowBefore     int           `json:"window_before"`
	WindowAfter      int           `json:"window_after"`
	Aligned          int           `json:"aligned"` // dates surviving the inner join, before window filtering
	Points           []WindowPoint `json:"points"`
}

// Empty reports whether the window contains no aligned dates.
func (w EventWindow) Empty() bool { return len(w.Points) == 0 }

// EventResult is the per-event outcome of a successful window computation.
type EventResult struct {
	Ticker         string    `json:"ticker"`
	Date           time.Time `json:"date"`
	SurprisePct    float64   `json:"surprise_pct"`
	Benchmark      string    `json:"benchmark"`
	CAR            float64   `json:"car"` // percent
	Observations   int       `json:"observations"`
	AlignmentEmpty bool      `json:"alignment_empty,omitempty"`
}

// FailureRecord describes an event that could not be processed.
type FailureRecord struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Kind   ErrorKind `json:"kind"`
	Reason string    `json:"reason"`
}

// BootstrapResult summarises a bootstrap distribution.
type BootstrapResult struct {
	PointEstimate float64 `json:"point_estimate"`
	CILower       float64 `json:"ci_lower"`
	CIUpper       float64 `json:"ci_upper"`
	PValue        float64 `json:"p_value"`
	Iterations    int     `json:"iterations"`
	SampleSize    int     `json:"sample_size"`
}

// Significant reports whether the p-value falls below alpha.
func (b BootstrapResult) Significant(alpha float64) bool {
	return b.PValue < alpha
}

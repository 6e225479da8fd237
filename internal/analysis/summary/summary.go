// Package summary computes descriptive statistics over event study results.
package summary

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/eventstudy/pkg/models"
)

// Stats describes a sample of values.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"` // sample standard deviation, NaN below 2 values
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe summarises values. An empty input yields a zero Count and NaN fields.
func Describe(values []float64) Stats {
	if len(values) == 0 {
		nan := math.NaN()
		return Stats{Mean: nan, Median: nan, StdDev: nan, Min: nan, Max: nan}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := Stats{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: median(sorted),
		StdDev: math.NaN(),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

// median averages the two middle values of an even-length sample.
// stat.Quantile with Empirical picks one of them instead.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// CARs extracts the CAR of every result.
func CARs(results []models.EventResult) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.CAR
	}
	return out
}

// Surprises extracts the EPS surprise of every result.
func Surprises(results []models.EventResult) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.SurprisePct
	}
	return out
}

// SplitBySurprise partitions results into beats (surprise > 0) and misses
// (surprise < 0). In-line results are in neither.
func SplitBySurprise(results []models.EventResult) (beats, misses []models.EventResult) {
	for _, r := range results {
		switch {
		case r.SurprisePct > 0:
			beats = append(beats, r)
		case r.SurprisePct < 0:
			misses = append(misses, r)
		}
	}
	return beats, misses
}

// SplitByCAR partitions results by the sign of their CAR.
func SplitByCAR(results []models.EventResult) (positive, negative []models.EventResult) {
	for _, r := range results {
		switch {
		case r.CAR > 0:
			positive = append(positive, r)
		case r.CAR < 0:
			negative = append(negative, r)
		}
	}
	return positive, negative
}

// TopN returns the n results with the highest CAR. Ties keep input order.
func TopN(results []models.EventResult, n int) []models.EventResult {
	return rank(results, n, func(a, b float64) bool { return a > b })
}

// BottomN returns the n results with the lowest CAR. Ties keep input order.
func BottomN(results []models.EventResult, n int) []models.EventResult {
	return rank(results, n, func(a, b float64) bool { return a < b })
}

func rank(results []models.EventResult, n int, less func(a, b float64) bool) []models.EventResult {
	if n <= 0 || len(results) == 0 {
		return nil
	}
	sorted := append([]models.EventResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i].CAR, sorted[j].CAR) })
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Correlation returns the Pearson correlation between surprise and CAR.
func Correlation(results []models.EventResult) (float64, error) {
	if len(results) < 2 {
		return math.NaN(), fmt.Errorf("%w: correlation needs at least 2 results, got %d", models.ErrEmptyInput, len(results))
	}
	r := stat.Correlation(Surprises(results), CARs(results), nil)
	if math.IsNaN(r) {
		return r, fmt.Errorf("%w: correlation undefined for a constant series", models.ErrEmptyInput)
	}
	return r, nil
}

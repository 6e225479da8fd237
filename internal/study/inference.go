package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seenimoa/eventstudy/internal/analysis/bootstrap"
	"github.com/seenimoa/eventstudy/internal/analysis/summary"
	"github.com/seenimoa/eventstudy/pkg/models"
)

// Inference holds bootstrap tests over the CARs of a run. A nil field means
// the subset was empty.
type Inference struct {
	Seed          uint64                  `json:"seed"`
	All           *models.BootstrapResult `json:"all,omitempty"`
	Beats         *models.BootstrapResult `json:"beats,omitempty"`
	Misses        *models.BootstrapResult `json:"misses,omitempty"`
	BeatsVsMisses *models.BootstrapResult `json:"beats_vs_misses,omitempty"`
}

// Infer bootstraps the mean CAR of all results, of beats and of misses, and
// the difference between beats and misses. All tests draw from one generator
// seeded with seed, in that order.
func Infer(ctx context.Context, results []models.EventResult, engine bootstrap.Engine, seed uint64) (Inference, error) {
	rng := bootstrap.NewRand(seed)
	inf := Inference{Seed: seed}

	beats, misses := summary.SplitBySurprise(results)
	all, b, m := summary.CARs(results), summary.CARs(beats), summary.CARs(misses)

	var err error
	if inf.All, err = optional(engine.Mean(ctx, all, rng)); err != nil {
		return inf, fmt.Errorf("bootstrap all: %w", err)
	}
	if inf.Beats, err = optional(engine.Mean(ctx, b, rng)); err != nil {
		return inf, fmt.Errorf("bootstrap beats: %w", err)
	}
	if inf.Misses, err = optional(engine.Mean(ctx, m, rng)); err != nil {
		return inf, fmt.Errorf("bootstrap misses: %w", err)
	}
	if inf.BeatsVsMisses, err = optional(engine.Difference(ctx, b, m, rng)); err != nil {
		return inf, fmt.Errorf("bootstrap beats vs misses: %w", err)
	}
	return inf, nil
}

// optional turns an empty-sample error into a nil result.
func optional(r models.BootstrapResult, err error) (*models.BootstrapResult, error) {
	if errors.Is(err, models.ErrEmptyInput) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Summary gathers everything a report needs about one run.
type Summary struct {
	GeneratedAt time.Time `json:"generated_at"`
	Options     Options   `json:"options"`
	Outcome     Outcome   `json:"outcome"`

	Overall summary.Stats `json:"overall"`
	Beats   summary.Stats `json:"beats"`
	Misses  summary.Stats `json:"misses"`

	PositiveCAR int `json:"positive_car"`
	NegativeCAR int `json:"negative_car"`

	Top    []models.EventResult `json:"top"`
	Bottom []models.EventResult `json:"bottom"`

	// Correlation is the Pearson correlation of surprise and CAR; valid only
	// when HasCorrelation is set.
	Correlation    float64 `json:"correlation"`
	HasCorrelation bool    `json:"has_correlation"`

	Inference Inference `json:"inference"`
}

// Summarize computes descriptive statistics and bootstrap inference for an
// outcome. topN bounds the best and worst event lists.
func Summarize(ctx context.Context, out Outcome, opts Options, engine bootstrap.Engine, seed uint64, topN int) (Summary, error) {
	results := out.Results
	beats, misses := summary.SplitBySurprise(results)
	pos, neg := summary.SplitByCAR(results)

	s := Summary{
		GeneratedAt: time.Now(),
		Options:     opts,
		Outcome:     out,
		Overall:     summary.Describe(summary.CARs(results)),
		Beats:       summary.Describe(summary.CARs(beats)),
		Misses:      summary.Describe(summary.CARs(misses)),
		PositiveCAR: len(pos),
		NegativeCAR: len(neg),
		Top:         summary.TopN(results, topN),
		Bottom:      summary.BottomN(results, topN),
	}
	if r, err := summary.Correlation(results); err == nil {
		s.Correlation, s.HasCorrelation = r, true
	}

	inf, err := Infer(ctx, results, engine, seed)
	if err != nil {
		return s, err
	}
	s.Inference = inf
	return s, nil
}

// Package bootstrap estimates confidence intervals and empirical p-values for
// sample means by resampling with replacement.
//
// Randomness is always supplied by the caller. With more than one worker the
// iterations are split into fixed contiguous chunks and every chunk draws from
// its own PCG stream seeded from the caller's generator, so a result depends
// only on (data, iterations, seed, workers).
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/eventstudy/pkg/models"
)

// ErrInvalidConfig is returned for an engine with unusable settings.
var ErrInvalidConfig = errors.New("invalid bootstrap config")

// checkEvery is how many iterations a worker runs between context checks.
const checkEvery = 256

// Engine holds the resampling settings. The zero value is not usable; start
// from Default.
type Engine struct {
	Iterations int
	LowerPct   float64 // lower CI percentile, e.g. 2.5
	UpperPct   float64 // upper CI percentile, e.g. 97.5
	Workers    int
}

// Default returns 10000 iterations with a 95% percentile interval on one worker.
func Default() Engine {
	return Engine{
		Iterations: 10000,
		LowerPct:   2.5,
		UpperPct:   97.5,
		Workers:    1,
	}
}

// NewRand returns a PCG generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Validate checks iterations, percentiles and workers.
func (e Engine) Validate() error {
	switch {
	case e.Iterations <= 0:
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidConfig, e.Iterations)
	case e.LowerPct <= 0 || e.UpperPct >= 100 || e.LowerPct >= e.UpperPct:
		return fmt.Errorf("%w: percentiles must satisfy 0 < lower < upper < 100, got %g/%g", ErrInvalidConfig, e.LowerPct, e.UpperPct)
	case e.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, e.Workers)
	}
	return nil
}

// Mean bootstraps the mean of data.
//
// The point estimate is the observed mean. The p-value is one-sided in the
// direction of the estimate: the share of bootstrap means <= 0 when the
// estimate is positive, otherwise the share >= 0.
func (e Engine) Mean(ctx context.Context, data []float64, rng *rand.Rand) (models.BootstrapResult, error) {
	if err := e.Validate(); err != nil {
		return models.BootstrapResult{}, err
	}
	if len(data) == 0 {
		return models.BootstrapResult{}, fmt.Errorf("%w: bootstrap sample is empty", models.ErrEmptyInput)
	}

	dist, err := e.distribution(ctx, rng, func(r *rand.Rand) float64 {
		return resampleMean(data, r)
	})
	if err != nil {
		return models.BootstrapResult{}, err
	}

	point := stat.Mean(data, nil)
	var p float64
	if point > 0 {
		p = fractionAtMost(dist, 0)
	} else {
		p = fractionAtLeast(dist, 0)
	}
	return e.result(point, p, dist, len(data)), nil
}

// Difference bootstraps mean(d1) - mean(d2), resampling each sample
// independently. The p-value is always the share of differences <= 0.
func (e Engine) Difference(ctx context.Context, d1, d2 []float64, rng *rand.Rand) (models.BootstrapResult, error) {
	if err := e.Validate(); err != nil {
		return models.BootstrapResult{}, err
	}
	if len(d1) == 0 || len(d2) == 0 {
		return models.BootstrapResult{}, fmt.Errorf("%w: bootstrap samples have sizes %d and %d", models.ErrEmptyInput, len(d1), len(d2))
	}

	dist, err := e.distribution(ctx, rng, func(r *rand.Rand) float64 {
		return resampleMean(d1, r) - resampleMean(d2, r)
	})
	if err != nil {
		return models.BootstrapResult{}, err
	}

	point := stat.Mean(d1, nil) - stat.Mean(d2, nil)
	return e.result(point, fractionAtMost(dist, 0), dist, len(d1)+len(d2)), nil
}

// distribution runs statistic Iterations times and returns the values sorted.
func (e Engine) distribution(ctx context.Context, rng *rand.Rand, statistic func(*rand.Rand) float64) ([]float64, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidConfig)
	}
	dist := make([]float64, e.Iterations)
	chunks := splitChunks(e.Iterations, e.Workers)

	// Streams are seeded before any worker starts so that scheduling cannot
	// change which seed a chunk gets.
	streams := make([]*rand.Rand, len(chunks))
	for i := range streams {
		streams[i] = rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range chunks {
		r := streams[i]
		out := dist[c.lo:c.hi]
		g.Go(func() error {
			for j := range out {
				if j%checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				out[j] = statistic(r)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A cancellation that landed after the last check still wins.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Float64s(dist)
	return dist, nil
}

func (e Engine) result(point, p float64, sorted []float64, n int) models.BootstrapResult {
	return models.BootstrapResult{
		PointEstimate: point,
		CILower:       Percentile(sorted, e.LowerPct),
		CIUpper:       Percentile(sorted, e.UpperPct),
		PValue:        p,
		Iterations:    e.Iterations,
		SampleSize:    n,
	}
}

// Percentile returns the pct-th percentile (0-100) of sorted, interpolating
// linearly between the two closest ranks at h = (n-1)*pct/100. This is the
// default method of numpy's percentile. sorted must be ascending and
// non-empty.
func Percentile(sorted []float64, pct float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * pct / 100
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo < 0 {
		return sorted[0]
	}
	if hi >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

type chunk struct{ lo, hi int }

// splitChunks divides n iterations into at most workers contiguous ranges.
// Earlier chunks take the remainder.
func splitChunks(n, workers int) []chunk {
	if workers > n {
		workers = n
	}
	size, rem := n/workers, n%workers
	out := make([]chunk, 0, workers)
	lo := 0
	for i := 0; i < workers; i++ {
		hi := lo + size
		if i < rem {
			hi++
		}
		out = append(out, chunk{lo, hi})
		lo = hi
	}
	return out
}

func resampleMean(data []float64, r *rand.Rand) float64 {
	n := len(data)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += data[r.IntN(n)]
	}
	return sum / float64(n)
}

// fractionAtMost returns the share of sorted values <= x.
func fractionAtMost(sorted []float64, x float64) float64 {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] > x })
	return float64(i) / float64(len(sorted))
}

// fractionAtLeast returns the share of sorted values >= x.
func fractionAtLeast(sorted []float64, x float64) float64 {
	i := sort.SearchFloat64s(sorted, x)
	return float64(len(sorted)-i) / float64(len(sorted))
}

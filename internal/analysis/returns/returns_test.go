package returns

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/eventstudy/pkg/models"
)

func prices(closes ...float64) []models.PricePoint {
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = models.PricePoint{Date: base.AddDate(0, 0, i), Close: c}
	}
	return out
}

func TestComputeLog(t *testing.T) {
	got, err := Compute(prices(100, 110, 121), true)
	require.NoError(t, err)
	require.Len(t, got, 2)

	want := math.Log(1.1)
	assert.InDelta(t, want, got[0].Value, 1e-12)
	assert.InDelta(t, want, got[1].Value, 1e-12)
	assert.InDelta(t, 0.09531, got[0].Value, 1e-5)
}

func TestComputeSimple(t *testing.T) {
	got, err := Compute(prices(100, 110, 99), false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.10, got[0].Value, 1e-12)
	assert.InDelta(t, -0.10, got[1].Value, 1e-12)
}

func TestComputeDatesTheLaterClose(t *testing.T) {
	in := prices(100, 110, 121)
	got, err := Compute(in, true)
	require.NoError(t, err)
	assert.Equal(t, in[1].Date, got[0].Date)
	assert.Equal(t, in[2].Date, got[1].Date)
}

func TestComputeTooShort(t *testing.T) {
	for _, in := range [][]models.PricePoint{nil, prices(100)} {
		_, err := Compute(in, true)
		assert.ErrorIs(t, err, models.ErrEmptyInput)
	}
}

func TestComputeNonPositive(t *testing.T) {
	_, err := Compute(prices(100, 0), true)
	assert.ErrorIs(t, err, models.ErrInputSchema)

	_, err = Compute(prices(0, 100), false)
	assert.ErrorIs(t, err, models.ErrInputSchema)
}

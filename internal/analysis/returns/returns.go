// Package returns converts price series into return series.
package returns

import (
	"fmt"
	"math"

	"github.com/seenimoa/eventstudy/pkg/models"
)

// Compute converts ascending prices into returns dated on the later close.
// With useLog the return is ln(c_t / c_{t-1}), otherwise (c_t - c_{t-1}) / c_{t-1}.
// The first price has no return, so the result is one shorter than the input.
func Compute(prices []models.PricePoint, useLog bool) ([]models.ReturnPoint, error) {
	if len(prices) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 prices, got %d", models.ErrEmptyInput, len(prices))
	}

	out := make([]models.ReturnPoint, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev, cur := prices[i-1].Close, prices[i].Close
		if prev <= 0 || (useLog && cur <= 0) {
			return nil, fmt.Errorf("%w: non-positive close on %s", models.ErrInputSchema, prices[i].Date.Format("2006-01-02"))
		}

		var v float64
		if useLog {
			v = math.Log(cur / prev)
		} else {
			v = (cur - prev) / prev
		}
		out = append(out, models.ReturnPoint{Date: prices[i].Date, Value: v})
	}
	return out, nil
}

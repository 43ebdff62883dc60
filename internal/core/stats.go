package core

import (
	"math"
	"sort"
)

// numbers returns the non-null numeric cells of a column, in row order,
// together with their row positions.
func numbers(c *Column) (vals []float64, rows []int) {
	for i, v := range c.Values {
		if f, ok := v.Number(); ok {
			vals = append(vals, f)
			rows = append(rows, i)
		}
	}
	return vals, rows
}

// quantile returns the q-th quantile of vals by linear interpolation between
// the closest ranks (numpy's default). vals need not be sorted; it is not
// modified. The result is NaN for an empty input.
func quantile(vals []float64, q float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := h - float64(lo)
	if frac == 0 {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// median is the 0.5 quantile.
func median(vals []float64) float64 {
	return quantile(vals, 0.5)
}

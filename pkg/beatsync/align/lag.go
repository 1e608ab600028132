package align

import (
	"errors"
	"math"
	"sort"
)

// DefaultSearchRangeMs is the default symmetric lag search window.
const DefaultSearchRangeMs = 300.0

// gridPoints fixes the lag grid resolution: 121 points over the default
// +/-300 ms window is a 5 ms step.
const gridPoints = 121

var ErrBadSearchRange = errors.New("align: search range must be positive")

// BestLag searches [-searchMs, +searchMs] for the constant shift (in
// milliseconds, added to every event time) that minimizes the median
// absolute timing error against beatTimes. The grid always includes both
// endpoints, so the result lies within the requested range. Candidates are
// scanned in ascending order and the best is only replaced on strict
// improvement, so on ties the earliest-scanned lag wins.
//
// If either sequence is empty no search is performed and 0 is returned.
// A non-positive searchMs is a precondition violation.
func BestLag(eventTimes, beatTimes []float64, searchMs float64) (float64, error) {
	if searchMs <= 0 {
		return 0, ErrBadSearchRange
	}
	if len(eventTimes) == 0 || len(beatTimes) == 0 {
		return 0, nil
	}

	shifted := make([]float64, len(eventTimes))
	bestLag := 0.0
	bestScore := math.Inf(1)

	for k := 0; k < gridPoints; k++ {
		lag := searchMs * (2*float64(k)/float64(gridPoints-1) - 1)
		for i, t := range eventTimes {
			shifted[i] = t + lag/1000.0
		}
		_, errs := NearestBeats(shifted, beatTimes)
		if score := MedianAbs(errs); score < bestScore {
			bestScore = score
			bestLag = lag
		}
	}

	return bestLag, nil
}

// MedianAbs returns the median of the absolute values of xs, the robust
// alignment quality score used by BestLag. Returns 0 for an empty slice.
func MedianAbs(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	abs := make([]float64, len(xs))
	for i, v := range xs {
		abs[i] = math.Abs(v)
	}
	sort.Float64s(abs)
	mid := len(abs) / 2
	if len(abs)%2 == 1 {
		return abs[mid]
	}
	return (abs[mid-1] + abs[mid]) / 2
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

// Package align measures how well a sequence of event timestamps lines up
// with a beat timeline and finds the constant lag that best corrects a
// systematic offset between the two.
package align

import "sort"

// NearestBeats finds, for every event time, the closest beat time by
// absolute difference and the signed timing error in milliseconds
// (negative = the event precedes the beat). beatTimes must be sorted
// ascending, which the beat tracker guarantees; eventTimes need not be.
//
// When an event is exactly equidistant from two beats the earlier beat is
// returned. Callers should not rely on the direction of this tie-break,
// only on its determinism.
//
// If either input is empty, two empty slices are returned. That is the
// defined degenerate behavior, not a failure.
func NearestBeats(eventTimes, beatTimes []float64) (nearest []float64, errsMs []float64) {
	if len(eventTimes) == 0 || len(beatTimes) == 0 {
		return []float64{}, []float64{}
	}

	nearest = make([]float64, len(eventTimes))
	errsMs = make([]float64, len(eventTimes))
	for i, t := range eventTimes {
		j := sort.SearchFloat64s(beatTimes, t)
		var b float64
		switch {
		case j == 0:
			b = beatTimes[0]
		case j == len(beatTimes):
			b = beatTimes[len(beatTimes)-1]
		default:
			left, right := beatTimes[j-1], beatTimes[j]
			if t-left <= right-t {
				b = left
			} else {
				b = right
			}
		}
		nearest[i] = b
		errsMs[i] = (t - b) * 1000.0
	}
	return nearest, errsMs
}

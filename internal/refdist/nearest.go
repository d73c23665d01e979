package refdist

import (
	"math"
	"sort"
)

// Nearest returns the member of the ascending keys closest to target.
// Equidistant candidates resolve to the smaller key. It panics on empty keys;
// tables built by this package are never empty.
func Nearest(keys []float64, target float64) float64 {
	if len(keys) == 0 {
		panic("refdist: Nearest on empty key set")
	}
	i := sort.SearchFloat64s(keys, target)
	if i == 0 {
		return keys[0]
	}
	if i == len(keys) {
		return keys[len(keys)-1]
	}
	lo, hi := keys[i-1], keys[i]
	if math.Abs(hi-target) < math.Abs(target-lo) {
		return hi
	}
	return lo
}

package processor

import (
	"math"
	"sort"
)

// Selection lists the frames chosen for the noise profile, quietest first.
// The order is significant: the output clip is assembled in this order, not
// in time order.
type Selection []int

// RankFrames returns all frame indices sorted by ascending loudness.
// Frames of equal loudness keep their time order. NaN scores sort last.
func RankFrames(profile LoudnessProfile) []int {
	order := make([]int, len(profile))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		la, lb := profile[order[a]], profile[order[b]]
		if math.IsNaN(lb) {
			return !math.IsNaN(la)
		}
		return la < lb
	})

	return order
}

// SelectSilentFrames ranks the profile and keeps every frame before the first
// one louder than cutoffDB. All selected frames are at or below cutoffDB and
// the result is ordered by ascending loudness. The result is empty when the
// quietest frame already exceeds the cutoff.
func SelectSilentFrames(profile LoudnessProfile, cutoffDB float64) Selection {
	ranked := RankFrames(profile)

	n := 0
	for _, idx := range ranked {
		l := profile[idx]
		if math.IsNaN(l) || l > cutoffDB {
			break
		}
		n++
	}

	return Selection(ranked[:n])
}

// Package aggregate implements the per-CBC sort/gather step of
// SPEC_FULL.md (spec.md §4.4): turning a slice of (leader, follower) pairs
// into counted, deduplicated (leader, follower, count) triples.
package aggregate

import (
	"sort"
	"sync/atomic"

	"github.com/salzmanlab/bkc/pairwalk"
)

// Triple is one distinct (leader, follower) pair with its observed count,
// clamped to a run's MaxCount.
type Triple struct {
	Leader   uint64
	Follower uint64
	Count    uint32
}

// Saturated counts how many occurrences across the whole run were dropped
// because their triple had already reached MaxCount (one increment per
// clamped occurrence, not one per saturated triple; spec.md §7 "Count
// saturation: silent... an implementation-defined saturation counter may be
// incremented").
var Saturated uint64

// SaturatedCount reports the current value of the saturation counter.
func SaturatedCount() uint64 { return atomic.LoadUint64(&Saturated) }

// less orders pairs lexicographically on (Leader, Follower), matching the
// plain operator< a C++ std::pair/tuple comparison would give, which is
// also the order spec.md §5 calls out as the per-CBC output order.
func less(a, b pairwalk.Pair) bool {
	if a.Leader != b.Leader {
		return a.Leader < b.Leader
	}
	return a.Follower < b.Follower
}

// SortAndGather sorts pairs in place (unstable; ties carry no payload so
// instability is harmless) and scans the runs into triples, appending to
// the caller-owned scratch slice. Go's sort.Slice is an introsort-family
// unstable sort (pattern-defeating since Go 1.19), matching spec.md's
// "unstable pattern-defeating quicksort" requirement without reaching for
// an external sort package: the per-CBC pair count is typically small
// enough that a dedicated parallel sort would not recoup its own overhead
// (see SPEC_FULL.md's DOMAIN STACK note on twotwotwo/sorts, used instead
// for the larger, cross-CBC manifest-merge sort).
func SortAndGather(pairs []pairwalk.Pair, maxCount uint32, out []Triple) []Triple {
	sort.Slice(pairs, func(i, j int) bool { return less(pairs[i], pairs[j]) })

	if len(pairs) == 0 {
		return out
	}

	cur := Triple{Leader: pairs[0].Leader, Follower: pairs[0].Follower, Count: 1}
	for i := 1; i < len(pairs); i++ {
		p := pairs[i]
		if p.Leader == cur.Leader && p.Follower == cur.Follower {
			if cur.Count < maxCount {
				cur.Count++
			} else {
				atomic.AddUint64(&Saturated, 1)
			}
			continue
		}
		out = append(out, cur)
		cur = Triple{Leader: p.Leader, Follower: p.Follower, Count: 1}
	}
	out = append(out, cur)
	return out
}

package aggregate

import (
	"testing"

	"github.com/salzmanlab/bkc/pairwalk"
)

func TestSortAndGatherCountsDistinctPairs(t *testing.T) {
	pairs := []pairwalk.Pair{
		{Leader: 1, Follower: 2},
		{Leader: 1, Follower: 2},
		{Leader: 3, Follower: 4},
	}
	out := SortAndGather(pairs, 100, nil)
	if len(out) != 2 {
		t.Fatalf("got %d triples, want 2", len(out))
	}
	var got12, got34 uint32
	for _, tr := range out {
		if tr.Leader == 1 && tr.Follower == 2 {
			got12 = tr.Count
		}
		if tr.Leader == 3 && tr.Follower == 4 {
			got34 = tr.Count
		}
	}
	if got12 != 2 || got34 != 1 {
		t.Fatalf("got counts (12=%d, 34=%d), want (2, 1)", got12, got34)
	}
}

func TestSortAndGatherEmpty(t *testing.T) {
	out := SortAndGather(nil, 100, nil)
	if len(out) != 0 {
		t.Fatalf("got %d triples, want 0", len(out))
	}
}

func TestSaturationClamp(t *testing.T) {
	pairs := make([]pairwalk.Pair, 9)
	for i := range pairs {
		pairs[i] = pairwalk.Pair{Leader: 1, Follower: 2}
	}
	before := SaturatedCount()
	out := SortAndGather(pairs, 3, nil)
	if len(out) != 1 || out[0].Count != 3 {
		t.Fatalf("got %+v, want one triple with count 3", out)
	}
	if after := SaturatedCount(); after <= before {
		t.Fatal("expected saturation counter to increment")
	}
}

func TestSumOfCountsEqualsExtractions(t *testing.T) {
	pairs := []pairwalk.Pair{
		{Leader: 1, Follower: 1},
		{Leader: 1, Follower: 1},
		{Leader: 2, Follower: 2},
		{Leader: 1, Follower: 2},
	}
	out := SortAndGather(pairs, 1000, nil)
	var sum uint32
	for _, tr := range out {
		sum += tr.Count
	}
	if int(sum) != len(pairs) {
		t.Fatalf("sum of counts = %d, want %d", sum, len(pairs))
	}
}

package manifest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWriteToAndFromFileRoundTrip(t *testing.T) {
	m := New()
	m.SampleID = 1
	m.LeaderLen = 16
	m.FollowerLen = 20
	m.GapLen = 2
	m.CBCLen = 16
	m.NumSplits = 4
	m.MaxCount = 65535
	m.TotalPairCount = 1000
	m.SumPairCount = 950
	m.CBCsProcessed = 12
	m.Saturated = 3
	m.ShardFiles = []string{"run.3.bkc", "run.1.bkc", "run.0.bkc", "run.2.bkc"}

	path := filepath.Join(t.TempDir(), FileName)
	if err := m.WriteTo(path); err != nil {
		t.Fatal(err)
	}

	got, err := FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Fatalf("got %+v, want %+v", got, m)
	}
}

func TestFromFileRejectsVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	bad := "version: 99\n"
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := FromFile(path); err == nil {
		t.Fatal("expected version mismatch error")
	}
}

func TestMergeManifestsSumsTotalsAndSortsShardFiles(t *testing.T) {
	base := Manifest{
		Version: Version, SampleID: 1, LeaderLen: 16, FollowerLen: 20,
		GapLen: 2, CBCLen: 16, NumSplits: 2, MaxCount: 1000,
	}
	a := base
	a.TotalPairCount, a.SumPairCount, a.CBCsProcessed, a.Saturated = 10, 9, 2, 1
	a.ShardFiles = []string{"run1.1.bkc", "run1.0.bkc"}

	b := base
	b.TotalPairCount, b.SumPairCount, b.CBCsProcessed, b.Saturated = 5, 5, 1, 0
	b.ShardFiles = []string{"run2.0.bkc", "run2.1.bkc"}

	merged, err := MergeManifests([]Manifest{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if merged.TotalPairCount != 15 || merged.SumPairCount != 14 || merged.CBCsProcessed != 3 || merged.Saturated != 1 {
		t.Fatalf("got %+v, want summed totals 15/14/3/1", merged)
	}
	want := []string{"run1.0.bkc", "run1.1.bkc", "run2.0.bkc", "run2.1.bkc"}
	if !reflect.DeepEqual(merged.ShardFiles, want) {
		t.Fatalf("got shard files %v, want sorted %v", merged.ShardFiles, want)
	}
}

func TestMergeManifestsRejectsIncompatibleParams(t *testing.T) {
	a := Manifest{Version: Version, LeaderLen: 16, NumSplits: 2}
	b := Manifest{Version: Version, LeaderLen: 20, NumSplits: 2}
	if _, err := MergeManifests([]Manifest{a, b}); err == nil {
		t.Fatal("expected error for mismatched leader length")
	}
}

func TestMergeManifestsRejectsEmptyInput(t *testing.T) {
	if _, err := MergeManifests(nil); err == nil {
		t.Fatal("expected error for empty manifest list")
	}
}

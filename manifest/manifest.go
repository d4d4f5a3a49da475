// Package manifest implements the "_bkc.yml" run manifest written
// alongside a counting run's shards, mirrored on the teacher's
// UnikIndexDBInfo / "_db.yml" convention in kmcp/cmd/util-db.go, and the
// cross-run merge step described in SPEC_FULL.md's DOMAIN STACK section.
package manifest

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/twotwotwo/sorts"
	"gopkg.in/yaml.v2"
)

// FileName is the manifest's conventional name, written into a run's
// output directory next to its shard files.
const FileName = "_bkc.yml"

// Version is the manifest format version.
const Version uint8 = 1

// ErrVersionMismatch is returned by FromFile when a manifest was written by
// an incompatible version of this package.
var ErrVersionMismatch = errors.New("bkc/manifest: version mismatch")

// Manifest records one run's parameters and resulting shard files, per
// SPEC_FULL.md's AMBIENT STACK "Configuration" note.
type Manifest struct {
	Version uint8 `yaml:"version"`

	SampleID    uint64 `yaml:"sampleId"`
	LeaderLen   int    `yaml:"leaderLen"`
	FollowerLen int    `yaml:"followerLen"`
	GapLen      int    `yaml:"gapLen"`
	CBCLen      int    `yaml:"cbcLen"`
	NumSplits   int    `yaml:"numSplits"`
	MaxCount    uint32 `yaml:"maxCount"`

	TotalPairCount uint64 `yaml:"totalPairCount"`
	SumPairCount   uint64 `yaml:"sumPairCount"`
	CBCsProcessed  uint64 `yaml:"cbcsProcessed"`
	Saturated      uint64 `yaml:"saturated"`

	ShardFiles []string `yaml:"shardFiles"`
}

// New builds a Manifest with Version already set.
func New() Manifest {
	return Manifest{Version: Version}
}

// WriteTo marshals m as YAML and writes it to file, mirroring
// UnikIndexDBInfo.WriteTo in the teacher's util-db.go.
func (m Manifest) WriteTo(file string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "bkc/manifest: marshaling manifest")
	}
	if err := os.WriteFile(file, data, 0644); err != nil {
		return errors.Wrapf(err, "bkc/manifest: writing %s", file)
	}
	return nil
}

// FromFile reads and validates a manifest previously written by WriteTo.
func FromFile(file string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(file)
	if err != nil {
		return m, errors.Wrapf(err, "bkc/manifest: reading %s", file)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, errors.Wrapf(err, "bkc/manifest: unmarshaling %s", file)
	}
	if m.Version != Version {
		return m, errors.Wrapf(ErrVersionMismatch, "%s has version %d, want %d", file, m.Version, Version)
	}
	return m, nil
}

// sortableShardFiles is a sort.Interface over shard file names, passed to
// sorts.Quicksort (the same entry point the teacher calls on its Matches
// type in merge.go/util-db-search.go) so the merge below uses a real
// parallel sort implementation from the example pack instead of
// sort.Strings, per SPEC_FULL.md's DOMAIN STACK note reserving
// twotwotwo/sorts for this larger, cross-manifest merge workload (the
// small hot per-CBC sort in aggregate.SortAndGather deliberately stays on
// sort.Slice).
type sortableShardFiles []string

func (s sortableShardFiles) Len() int           { return len(s) }
func (s sortableShardFiles) Less(i, j int) bool { return s[i] < s[j] }
func (s sortableShardFiles) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// MergeManifests combines several per-run manifests that wrote into the
// same output directory into one, summing run totals and concatenating
// and sorting shard file lists. All inputs must share the same
// LeaderLen/FollowerLen/GapLen/CBCLen/NumSplits/MaxCount/SampleID.
func MergeManifests(ms []Manifest) (Manifest, error) {
	if len(ms) == 0 {
		return Manifest{}, errors.New("bkc/manifest: no manifests to merge")
	}
	out := New()
	first := ms[0]
	out.SampleID = first.SampleID
	out.LeaderLen = first.LeaderLen
	out.FollowerLen = first.FollowerLen
	out.GapLen = first.GapLen
	out.CBCLen = first.CBCLen
	out.NumSplits = first.NumSplits
	out.MaxCount = first.MaxCount

	var shardFiles []string
	for _, m := range ms {
		if m.LeaderLen != first.LeaderLen || m.FollowerLen != first.FollowerLen ||
			m.GapLen != first.GapLen || m.CBCLen != first.CBCLen ||
			m.NumSplits != first.NumSplits || m.MaxCount != first.MaxCount ||
			m.SampleID != first.SampleID {
			return Manifest{}, fmt.Errorf("bkc/manifest: manifests have incompatible run parameters")
		}
		out.TotalPairCount += m.TotalPairCount
		out.SumPairCount += m.SumPairCount
		out.CBCsProcessed += m.CBCsProcessed
		out.Saturated += m.Saturated
		shardFiles = append(shardFiles, m.ShardFiles...)
	}

	if len(shardFiles) > 0 {
		sorts.Quicksort(sortableShardFiles(shardFiles))
	}
	out.ShardFiles = shardFiles
	return out, nil
}

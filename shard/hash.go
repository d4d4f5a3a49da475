// Package shard implements leader-hash-based shard routing and the shard
// sink contract of SPEC_FULL.md / spec.md §4.5 step 3 and §4.7.
package shard

import "github.com/zeebo/xxh3"

// HashLeader is the default 64-bit avalanche mix used to route a leader
// k-mer to a shard. It is the same finalizer-style integer hash the teacher
// uses in cmd/util-hash.go's hash64 to re-hash uint64 k-mer codes before
// bloom-filter placement (https://gist.github.com/badboy/6267743), reused
// here verbatim because spec.md §4.5 calls for "a stable 64-bit mix
// (MurmurHash-finalizer-style)".
func HashLeader(code uint64) uint64 {
	key := code
	key = (^key) + (key << 21) // key = (key << 21) - key - 1
	key = key ^ (key >> 24)
	key = (key + (key << 3)) + (key << 8) // key * 265
	key = key ^ (key >> 14)
	key = (key + (key << 2)) + (key << 4) // key * 21
	key = key ^ (key >> 28)
	key = key + (key << 31)
	return key
}

// HashLeaderXXH3 is an alternative leader hash backed by zeebo/xxh3,
// selectable via the count command's --hash-xxh3 flag, giving the sharding
// component two interchangeable hash families the way the teacher's own
// dependency set offers (zeebo/xxh3 alongside zeebo/wyhash for its unikmer
// indices).
func HashLeaderXXH3(code uint64) uint64 {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(code >> (8 * i))
	}
	return xxh3.Hash(buf[:])
}

// HashFunc selects one of the two leader-hash families.
type HashFunc func(uint64) uint64

// ShardOf computes the destination shard for a leader k-mer. Per spec.md
// §4.5/§8 item 4, the result is deterministic given the same leader code,
// hash function, and NumSplits across independent runs.
func ShardOf(hash HashFunc, code uint64, numSplits int) int {
	return int(hash(code) % uint64(numSplits))
}

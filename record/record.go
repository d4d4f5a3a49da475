// Package record implements the compact encoded record writer of
// SPEC_FULL.md / spec.md §4.6: fixed-byte-width integers with an optional
// shared-prefix delta encoding, mirrored on the field-width precomputation
// in the teacher's kmcp/cmd/index/serialization.go Header/Writer types.
package record

import (
	"encoding/binary"
	"math/bits"
)

// Record is one (sample_id, barcode, leader, follower, count) tuple, per
// spec.md §3.
type Record struct {
	SampleID uint64
	Barcode  uint64
	Leader   uint64
	Follower uint64
	Count    uint64
}

// FieldWidths holds the minimum whole-byte width needed for each field of a
// run, computed once at startup from the run's parameters (spec.md §4.6).
type FieldWidths struct {
	SampleID int
	Barcode  int
	Leader   int
	Follower int
	Counter  int
}

// byteWidth returns ceil(bitWidth/8), minimum 1.
func byteWidth(bitWidth int) int {
	if bitWidth <= 0 {
		return 1
	}
	return (bitWidth + 7) / 8
}

// NewFieldWidths computes field widths from run parameters: cbcLen/
// leaderLen/followerLen are k-mer lengths in bases (2 bits/base); maxCount
// and maxSampleID bound the counter and sample-id fields directly.
func NewFieldWidths(cbcLen, leaderLen, followerLen int, maxCount, maxSampleID uint64) FieldWidths {
	return FieldWidths{
		SampleID: byteWidth(bits.Len64(maxSampleID)),
		Barcode:  byteWidth(2 * cbcLen),
		Leader:   byteWidth(2 * leaderLen),
		Follower: byteWidth(2 * followerLen),
		Counter:  byteWidth(bits.Len64(maxCount)),
	}
}

// Total returns the total per-record byte size for the fixed-width
// encoding (the compact encoding's "full record" size is the same, before
// shared-prefix compression).
func (w FieldWidths) Total() int {
	return w.SampleID + w.Barcode + w.Leader + w.Follower + w.Counter
}

// putUintLE writes the low n bytes of v into buf, little-endian.
func putUintLE(buf []byte, v uint64, n int) {
	tmp := make([]byte, 8)
	binary.LittleEndian.PutUint64(tmp, v)
	copy(buf, tmp[:n])
}

func getUintLE(buf []byte, n int) uint64 {
	tmp := make([]byte, 8)
	copy(tmp, buf[:n])
	return binary.LittleEndian.Uint64(tmp)
}

func putUintBE(buf []byte, v uint64, n int) {
	tmp := make([]byte, 8)
	binary.BigEndian.PutUint64(tmp, v)
	copy(buf, tmp[8-n:])
}

func getUintBE(buf []byte, n int) uint64 {
	tmp := make([]byte, 8)
	copy(tmp[8-n:], buf[:n])
	return binary.BigEndian.Uint64(tmp)
}

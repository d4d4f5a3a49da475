// Package reads implements the read-index collaborator contracts from
// SPEC_FULL.md's reads module: a CBC -> read_id mapping, a packed read_id
// encoding, and a read-provider abstraction over per-file read arrays.
// FASTQ/FASTA parsing and CBC correction remain out of scope (spec.md §1);
// this package only covers what the core counts against.
package reads

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/salzmanlab/bkc/kmer"
)

// ReadID packs (fileID, localID) into a single uint64 key, per spec.md §3.
type ReadID uint64

// fileIDBits reserves the high bits of a ReadID for the file index, leaving
// the low bits for the per-file local read index.
const fileIDBits = 24

// PackReadID combines a file id and a local read id into a ReadID.
func PackReadID(fileID, localID uint64) ReadID {
	return ReadID((fileID << (64 - fileIDBits)) | (localID & (1<<(64-fileIDBits) - 1)))
}

// UnpackReadID is the inverse of PackReadID.
func UnpackReadID(id ReadID) (fileID, localID uint64) {
	v := uint64(id)
	fileID = v >> (64 - fileIDBits)
	localID = v & (1<<(64-fileIDBits) - 1)
	return
}

// ReadProvider yields the ASCII base sequence for a (fileID, localID) pair,
// decoding on demand if the underlying storage is packed. Implementations
// must be safe for concurrent calls from multiple goroutines (the driver's
// worker pool reads through the same provider from every goroutine).
type ReadProvider interface {
	Read(fileID, localID uint64) []byte
}

// RawReadProvider stores ASCII bases directly, one slice of reads per file.
type RawReadProvider [][][]byte

// Read implements ReadProvider.
func (p RawReadProvider) Read(fileID, localID uint64) []byte {
	return p[fileID][localID]
}

// Index maps an encoded CBC (2 bits/base, per spec.md §6) to the sequence
// of ReadIDs tagged by that barcode. Built once by the caller before
// counting begins and read-only thereafter (spec.md §3 "Lifecycle").
type Index struct {
	byCBC map[uint64][]ReadID
}

// NewIndex creates an empty, mutable-until-you-stop-mutating-it Index. Use
// Add while loading, then treat the Index as read-only.
func NewIndex() *Index {
	return &Index{byCBC: make(map[uint64][]ReadID)}
}

// Add appends a read id to a barcode's read list.
func (idx *Index) Add(cbc uint64, id ReadID) {
	idx.byCBC[cbc] = append(idx.byCBC[cbc], id)
}

// Reads returns the read ids tagged by cbc.
func (idx *Index) Reads(cbc uint64) []ReadID {
	return idx.byCBC[cbc]
}

// CBCs returns the distinct barcodes in the index, in map iteration order
// (spec.md §5 guarantees no cross-CBC ordering, so callers must not rely on
// this order being stable across runs).
func (idx *Index) CBCs() []uint64 {
	out := make([]uint64, 0, len(idx.byCBC))
	for cbc := range idx.byCBC {
		out = append(out, cbc)
	}
	return out
}

// Len returns the number of distinct barcodes in the index.
func (idx *Index) Len() int { return len(idx.byCBC) }

// ErrUnknownCBC reports a predefined CBC that is absent from the read
// index. FilterCBCs does not return it: predefined CBCs missing from the
// index are dropped without an error.
var ErrUnknownCBC = errors.New("bkc/reads: predefined CBC not present in read index")

// FilterCBCs restricts idx to only the barcodes present in allowed,
// supplementing spec.md with the original source's --predefined_cbc list
// (bkc_filter.cpp's load_predefined_cbc_plain/load_predefined_cbc_visium):
// a caller-supplied set of trusted CBCs narrows the work list the parallel
// driver sees before counting starts.
func FilterCBCs(idx *Index, allowed map[uint64]struct{}) *Index {
	out := NewIndex()
	for cbc, ids := range idx.byCBC {
		if _, ok := allowed[cbc]; ok {
			out.byCBC[cbc] = ids
		}
	}
	return out
}

// LoadPredefinedCBCs reads a whitespace-separated list of CBC strings,
// grounded on bkc_filter.cpp's load_predefined_cbc_plain (ifs >> s over
// the whole file, one CBC string per token, no delimiter-aware parsing),
// and encodes each into the uint64 set FilterCBCs expects. A token that
// fails to encode at cbcLen (wrong length, non-ACGT) is reported via
// ErrInvalidPredefinedCBC rather than silently dropped.
func LoadPredefinedCBCs(r io.Reader, cbcLen int) (map[uint64]struct{}, error) {
	out := make(map[uint64]struct{})
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		tok := scanner.Text()
		code, ok := kmer.EncodeKmer(tok, cbcLen)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidPredefinedCBC, "%q", tok)
		}
		out[code] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ErrInvalidPredefinedCBC is returned by LoadPredefinedCBCs for a token
// that isn't a pure ACGT string of length cbcLen.
var ErrInvalidPredefinedCBC = errors.New("bkc/reads: invalid predefined CBC token")

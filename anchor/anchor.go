// Package anchor implements the accepted-anchor dictionary (SPEC_FULL.md
// module: anchor). A Dictionary gates which leader k-mers are allowed to
// emit pairs; once built it is immutable and safe for concurrent readers.
package anchor

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/salzmanlab/bkc/kmer"
)

// ErrAnchorLength is returned when a dictionary line's length does not
// match the configured leader length.
var ErrAnchorLength = errors.New("bkc/anchor: anchor length does not match leader-len")

// ErrInvalidBase is returned when a dictionary line contains a base outside
// A/C/G/T (case-insensitive).
var ErrInvalidBase = errors.New("bkc/anchor: anchor contains a non-ACGT base")

// Dictionary is a read-only set of accepted leader k-mer encodings.
//
// A plain Go map is sufficient: once BuildFromCodes or LoadDictionary
// returns, no further writes
// occur, and concurrent map reads are safe without synchronization. This
// mirrors the read-only, shared-by-reference accepted_anchors contract in
// spec.md §4.2/§5.
type Dictionary struct {
	leaderLen int
	set       map[uint64]struct{}
}

// LeaderLen returns the k-mer length every entry in the dictionary has.
func (d *Dictionary) LeaderLen() int { return d.leaderLen }

// Len returns the number of distinct accepted anchors.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.set)
}

// IsAccepted reports whether code is in the dictionary. A nil Dictionary
// accepts everything, matching spec.md's "absent means all leaders are
// accepted" rule.
func (d *Dictionary) IsAccepted(code uint64) bool {
	if d == nil {
		return true
	}
	_, ok := d.set[code]
	return ok
}

// BuildFromCodes constructs a Dictionary directly from pre-encoded leader
// codes, all of length leaderLen.
func BuildFromCodes(codes []uint64, leaderLen int) *Dictionary {
	set := make(map[uint64]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return &Dictionary{leaderLen: leaderLen, set: set}
}

// LoadDictionary reads one k-mer per whitespace-delimited line from r and
// builds a Dictionary. Per SPEC_FULL.md's supplemented anchor-dictionary
// loading, a line is also accepted as a whitespace/tab-delimited row where
// the first field is the k-mer (a TSV with an "anchor" column, as the
// original bkc_filter's -d flag documents); extra columns are ignored. A
// single leading header line is auto-detected and skipped: if the first
// non-empty line's first field fails to parse as a leaderLen-length ACGT
// k-mer, it is treated as a header rather than a fatal error.
//
// Any line (other than a detected header) whose first field's length
// differs from leaderLen, or that contains a non-ACGT base, is a fatal
// configuration error per spec.md §7.
func LoadDictionary(r io.Reader, leaderLen int) (*Dictionary, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	set := make(map[uint64]struct{}, 1<<16)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		tok := fields[0]

		code, ok := kmer.EncodeKmer(tok, leaderLen)
		if !ok {
			if first {
				// Likely a header row (e.g. "anchor"): any first token that
				// fails to parse as a leaderLen-length ACGT k-mer, whether by
				// length or content, is treated as a header, not a fatal error.
				first = false
				continue
			}
			if len(tok) != leaderLen {
				return nil, errors.Wrapf(ErrAnchorLength, "line %q", line)
			}
			return nil, errors.Wrapf(ErrInvalidBase, "line %q", line)
		}
		first = false
		set[code] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "bkc/anchor: reading dictionary")
	}
	return &Dictionary{leaderLen: leaderLen, set: set}, nil
}

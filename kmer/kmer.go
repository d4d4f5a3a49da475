// Package kmer implements the rolling 2-bit k-mer encoder described in
// SPEC_FULL.md's kmer module: a fixed-width window over the last k valid
// DNA bases, encoded MSB-first into a uint64.
package kmer

// MaxK is the largest k-mer length that fits in a uint64 with 2 bits/base.
const MaxK = 32

// base2bits maps ASCII bytes to their 2-bit code; values >= 4 are invalid.
var base2bits [256]uint8

func init() {
	for i := range base2bits {
		base2bits[i] = 4
	}
	base2bits['A'], base2bits['a'] = 0, 0
	base2bits['C'], base2bits['c'] = 1, 1
	base2bits['G'], base2bits['g'] = 2, 2
	base2bits['T'], base2bits['t'] = 3, 3
}

// Code2Base is the inverse lookup of base2bits for codes 0..3.
var Code2Base = [4]byte{'A', 'C', 'G', 'T'}

// BaseCode returns the 2-bit code for an ASCII base, or a sentinel >= 4 if
// the base is not A/C/G/T (case-insensitive).
func BaseCode(b byte) uint8 {
	return base2bits[b]
}

// Kmer is a rolling window of the last K valid bases, 2 bits each, packed
// MSB-first ("aligned direct" layout per SPEC_FULL.md/spec.md §3).
type Kmer struct {
	k     int
	mask  uint64
	data  uint64
	valid int
}

// New creates a Kmer of length k (1 <= k <= MaxK).
func New(k int) *Kmer {
	if k <= 0 || k > MaxK {
		panic("kmer: k out of range")
	}
	var mask uint64
	if k == MaxK {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << uint(2*k)) - 1
	}
	return &Kmer{k: k, mask: mask}
}

// Len returns the configured k-mer length.
func (w *Kmer) Len() int { return w.k }

// Reset invalidates the window; it must be re-filled with k valid bases
// before IsFull returns true again.
func (w *Kmer) Reset() {
	w.data = 0
	w.valid = 0
}

// Insert shifts in one base code (0..3). Callers must not pass a sentinel
// (>=4); invalid bases are handled by calling Reset instead.
func (w *Kmer) Insert(code uint8) {
	w.data = ((w.data << 2) | uint64(code)) & w.mask
	if w.valid < w.k {
		w.valid++
	}
}

// IsFull reports whether k valid bases have been inserted since the last
// Reset.
func (w *Kmer) IsFull() bool { return w.valid == w.k }

// DataAlignedDir returns the current window's encoding: the k-mer occupies
// the low 2*k bits, most-significant base first. Only meaningful once
// IsFull reports true.
func (w *Kmer) DataAlignedDir() uint64 { return w.data }

// EncodeKmer encodes a literal DNA string into its aligned-direct uint64
// form. It returns ok=false if seq contains a non-ACGT base or its length
// does not match k.
func EncodeKmer(seq string, k int) (code uint64, ok bool) {
	if len(seq) != k {
		return 0, false
	}
	w := New(k)
	for i := 0; i < len(seq); i++ {
		c := BaseCode(seq[i])
		if c >= 4 {
			return 0, false
		}
		w.Insert(c)
	}
	return w.DataAlignedDir(), true
}

// Decode renders a k-mer code back to its ASCII base string, the inverse of
// EncodeKmer. Used for diagnostics and tests, not on any hot path.
func Decode(code uint64, k int) string {
	buf := make([]byte, k)
	for i := k - 1; i >= 0; i-- {
		buf[i] = Code2Base[code&3]
		code >>= 2
	}
	return string(buf)
}

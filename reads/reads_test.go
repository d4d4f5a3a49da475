package reads

import (
	"bytes"
	"strings"
	"testing"

	"github.com/salzmanlab/bkc/kmer"
)

func TestPackUnpackReadID(t *testing.T) {
	id := PackReadID(7, 12345)
	fileID, localID := UnpackReadID(id)
	if fileID != 7 || localID != 12345 {
		t.Fatalf("got (%d, %d), want (7, 12345)", fileID, localID)
	}
}

func TestIndexEmptyCBC(t *testing.T) {
	idx := NewIndex()
	if len(idx.Reads(999)) != 0 {
		t.Fatal("unknown CBC must yield no reads")
	}
	if idx.Len() != 0 {
		t.Fatal("empty index must report length 0")
	}
}

func TestIndexAddAndFilter(t *testing.T) {
	idx := NewIndex()
	idx.Add(1, PackReadID(0, 0))
	idx.Add(1, PackReadID(0, 1))
	idx.Add(2, PackReadID(0, 2))

	if idx.Len() != 2 {
		t.Fatalf("got %d CBCs, want 2", idx.Len())
	}

	filtered := FilterCBCs(idx, map[uint64]struct{}{1: {}})
	if filtered.Len() != 1 {
		t.Fatalf("got %d CBCs after filter, want 1", filtered.Len())
	}
	if len(filtered.Reads(1)) != 2 {
		t.Fatalf("got %d reads for CBC 1, want 2", len(filtered.Reads(1)))
	}
	if len(filtered.Reads(2)) != 0 {
		t.Fatal("CBC 2 should have been filtered out")
	}
}

func TestRawReadProvider(t *testing.T) {
	p := RawReadProvider{{[]byte("ACGT"), []byte("TTTT")}}
	if got := p.Read(0, 1); !bytes.Equal(got, []byte("TTTT")) {
		t.Fatalf("got %q", got)
	}
}

func TestEncodeDecode3Bit(t *testing.T) {
	seq := []byte("ACGTNACGTN")
	packed := Encode3Bit(seq)
	got := Decode3Bit(packed, len(seq))
	if !bytes.Equal(got, seq) {
		t.Fatalf("round trip failed: got %q want %q", got, seq)
	}
}

func TestPackedReadProvider(t *testing.T) {
	seq := []byte("ACGTN")
	p := &PackedReadProvider{
		Packed:  [][][]byte{{Encode3Bit(seq)}},
		Lengths: [][]int{{len(seq)}},
	}
	if got := p.Read(0, 0); !bytes.Equal(got, seq) {
		t.Fatalf("got %q, want %q", got, seq)
	}
}

func TestLoadPredefinedCBCsWhitespaceSeparated(t *testing.T) {
	allowed, err := LoadPredefinedCBCs(strings.NewReader("ACGT\nTTTT\tGGGG\n"), 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(allowed) != 3 {
		t.Fatalf("got %d CBCs, want 3", len(allowed))
	}
	for _, s := range []string{"ACGT", "TTTT", "GGGG"} {
		code, _ := kmer.EncodeKmer(s, 4)
		if _, ok := allowed[code]; !ok {
			t.Fatalf("%s missing from predefined set", s)
		}
	}
}

func TestLoadPredefinedCBCsRejectsBadToken(t *testing.T) {
	if _, err := LoadPredefinedCBCs(strings.NewReader("ACGT\nACGN\n"), 4); err == nil {
		t.Fatal("expected an error for a non-ACGT token")
	}
}

func TestLoadPredefinedCBCsNarrowsIndex(t *testing.T) {
	acgt, _ := kmer.EncodeKmer("ACGT", 4)
	tttt, _ := kmer.EncodeKmer("TTTT", 4)

	idx := NewIndex()
	idx.Add(acgt, PackReadID(0, 0))
	idx.Add(tttt, PackReadID(0, 1))

	allowed, err := LoadPredefinedCBCs(strings.NewReader("ACGT\n"), 4)
	if err != nil {
		t.Fatal(err)
	}
	filtered := FilterCBCs(idx, allowed)
	if filtered.Len() != 1 {
		t.Fatalf("got %d CBCs after filter, want 1", filtered.Len())
	}
	if len(filtered.Reads(tttt)) != 0 {
		t.Fatal("TTTT should have been filtered out")
	}
}

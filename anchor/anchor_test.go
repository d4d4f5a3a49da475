package anchor

import (
	"strings"
	"testing"

	"github.com/salzmanlab/bkc/kmer"
)

func TestLoadDictionaryBasic(t *testing.T) {
	r := strings.NewReader("ACG\nTGC\n")
	d, err := LoadDictionary(r, 3)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 2 {
		t.Fatalf("got %d entries, want 2", d.Len())
	}
	acg, _ := kmer.EncodeKmer("ACG", 3)
	if !d.IsAccepted(acg) {
		t.Fatal("ACG should be accepted")
	}
	aaa, _ := kmer.EncodeKmer("AAA", 3)
	if d.IsAccepted(aaa) {
		t.Fatal("AAA should not be accepted")
	}
}

func TestLoadDictionarySkipsHeader(t *testing.T) {
	r := strings.NewReader("anchor\nACG\nTGC\n")
	d, err := LoadDictionary(r, 3)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 2 {
		t.Fatalf("got %d entries, want 2", d.Len())
	}
}

func TestLoadDictionaryTSV(t *testing.T) {
	r := strings.NewReader("anchor\tcount\nACG\t5\nTGC\t3\n")
	d, err := LoadDictionary(r, 3)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 2 {
		t.Fatalf("got %d entries, want 2", d.Len())
	}
}

func TestLoadDictionaryLengthMismatch(t *testing.T) {
	r := strings.NewReader("ACG\nTGCA\n")
	if _, err := LoadDictionary(r, 3); err == nil {
		t.Fatal("expected length-mismatch error")
	}
}

func TestLoadDictionaryInvalidBase(t *testing.T) {
	r := strings.NewReader("ACG\nNGC\n")
	if _, err := LoadDictionary(r, 3); err == nil {
		t.Fatal("expected invalid-base error")
	}
}

func TestLoadDictionarySkipsHeaderMatchingLeaderLen(t *testing.T) {
	r := strings.NewReader("anchor\nACGTGC\nTGCACG\n")
	d, err := LoadDictionary(r, 6)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 2 {
		t.Fatalf("got %d entries, want 2", d.Len())
	}
}

func TestNilDictionaryAcceptsAll(t *testing.T) {
	var d *Dictionary
	if !d.IsAccepted(12345) {
		t.Fatal("nil dictionary must accept everything")
	}
	if d.Len() != 0 {
		t.Fatal("nil dictionary must report 0 length")
	}
}

package anchor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/salzmanlab/bkc/kmer"
)

func TestLoadDictionaryMmapMatchesRegularLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anchors.txt")
	content := "ACGT\nTTTT\nGGGG\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadDictionaryMmap(path, 4)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 3 {
		t.Fatalf("got %d entries, want 3", d.Len())
	}

	code, ok := kmer.EncodeKmer("ACGT", 4)
	if !ok {
		t.Fatal("failed to encode ACGT")
	}
	if !d.IsAccepted(code) {
		t.Fatal("expected ACGT to be accepted")
	}

	other, ok := kmer.EncodeKmer("AAAA", 4)
	if !ok {
		t.Fatal("failed to encode AAAA")
	}
	if d.IsAccepted(other) {
		t.Fatal("expected AAAA to be rejected")
	}
}

func TestLoadDictionaryMmapEmptyFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadDictionaryMmap(path, 4)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 0 {
		t.Fatalf("got %d entries, want 0", d.Len())
	}
}

package shard

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestFileSinkWritesMagicAndBlocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shard0.bkc")

	s, err := NewFileSink(path, false, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddPacked([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPacked([]byte("world!")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, Magic[:]) {
		t.Fatal("missing magic header")
	}
	if data[len(Magic)] != Version {
		t.Fatalf("got version %d, want %d", data[len(Magic)], Version)
	}
	rest := data[len(Magic)+1:]

	l1 := binary.LittleEndian.Uint32(rest[:4])
	b1 := rest[4 : 4+l1]
	if !bytes.Equal(b1, []byte("hello")) {
		t.Fatalf("got %q, want hello", b1)
	}
	rest = rest[4+l1:]
	l2 := binary.LittleEndian.Uint32(rest[:4])
	b2 := rest[4 : 4+l2]
	if !bytes.Equal(b2, []byte("world!")) {
		t.Fatalf("got %q, want world!", b2)
	}
}

func TestFileSinkConcurrentAppendsNeverInterleaveWithinBlock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shard0.bkc")

	s, err := NewFileSink(path, false, 0)
	if err != nil {
		t.Fatal(err)
	}

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			block := bytes.Repeat([]byte{byte(i)}, 16)
			if err := s.AddPacked(block); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	rest := data[len(Magic)+1:]
	count := 0
	for len(rest) > 0 {
		l := binary.LittleEndian.Uint32(rest[:4])
		block := rest[4 : 4+l]
		if len(block) != 16 {
			t.Fatalf("block length %d, want 16 (interleaving detected)", len(block))
		}
		first := block[0]
		for _, b := range block {
			if b != first {
				t.Fatal("block contents not uniform: interleaving detected")
			}
		}
		rest = rest[4+l:]
		count++
	}
	if count != n {
		t.Fatalf("got %d blocks, want %d", count, n)
	}
}

func TestFileSinkCompressed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shard0.bkc.gz")

	s, err := NewFileSink(path, true, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddPacked([]byte("compressed block")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty compressed shard file")
	}
}

func TestAddPackedAfterCloseFails(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(filepath.Join(dir, "shard0.bkc"), false, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPacked([]byte("x")); err != ErrClosed {
		t.Fatalf("got %v, want ErrClosed", err)
	}
}

package record

import (
	"reflect"
	"testing"
)

func sampleRecords() []Record {
	return []Record{
		{SampleID: 1, Barcode: 0x3C, Leader: 0x01, Follower: 0x02, Count: 1},
		{SampleID: 1, Barcode: 0x3C, Leader: 0x01, Follower: 0x03, Count: 5},
		{SampleID: 1, Barcode: 0x3C, Leader: 0x05, Follower: 0x03, Count: 255},
		{SampleID: 2, Barcode: 0x00, Leader: 0xFF, Follower: 0xFF, Count: 9},
	}
}

func TestFieldWidthsCoverRange(t *testing.T) {
	w := NewFieldWidths(16, 20, 20, 1000, 4)
	if w.Barcode != 4 {
		t.Fatalf("got barcode width %d, want 4 (32 bits = 2*16)", w.Barcode)
	}
	if w.Leader != 5 {
		t.Fatalf("got leader width %d, want 5 (40 bits = 2*20)", w.Leader)
	}
	if w.Counter == 0 {
		t.Fatal("counter width must be nonzero")
	}
}

func TestFixedWidthRoundTrip(t *testing.T) {
	w := NewFieldWidths(16, 20, 20, 1000, 4)
	recs := sampleRecords()

	var buf []byte
	for _, r := range recs {
		buf = PackFixedWidth(buf, r, w)
	}

	got, err := UnpackFixedWidth(buf, w)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, recs) {
		t.Fatalf("got %+v, want %+v", got, recs)
	}
}

func TestFixedWidthTruncatedBlock(t *testing.T) {
	w := NewFieldWidths(16, 20, 20, 1000, 4)
	buf := PackFixedWidth(nil, sampleRecords()[0], w)
	if _, err := UnpackFixedWidth(buf[:len(buf)-1], w); err == nil {
		t.Fatal("expected error on truncated block")
	}
}

func TestCompactRoundTripWithinBlock(t *testing.T) {
	w := NewFieldWidths(16, 20, 20, 1000, 4)
	recs := sampleRecords()

	enc := NewCompactEncoder(w)
	enc.Reset()
	var block []byte
	for _, r := range recs {
		block = enc.Append(block, r)
	}

	dec := NewCompactDecoder(w)
	got, err := dec.DecodeBlock(block)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, recs) {
		t.Fatalf("got %+v, want %+v", got, recs)
	}
}

func TestCompactSharesPrefixBetweenSimilarRecords(t *testing.T) {
	w := NewFieldWidths(16, 20, 20, 1000, 4)
	recs := sampleRecords()

	enc := NewCompactEncoder(w)
	enc.Reset()
	var full []byte
	full = enc.Append(full, recs[0])
	first := len(full)
	full = enc.Append(full, recs[1])
	second := len(full) - first

	// recs[0] and recs[1] share sample_id, barcode, and leader: the
	// second record's encoded form should be shorter than a full record.
	if second >= w.Total()+1 {
		t.Fatalf("got second-record encoded length %d, want less than %d (shared prefix not exploited)", second, w.Total()+1)
	}
}

func TestCompactBlockBoundaryResetsPrefixState(t *testing.T) {
	w := NewFieldWidths(16, 20, 20, 1000, 4)
	recs := sampleRecords()

	enc := NewCompactEncoder(w)

	enc.Reset()
	var blockA []byte
	blockA = enc.Append(blockA, recs[0])
	blockA = enc.Append(blockA, recs[1])

	enc.Reset()
	var blockB []byte
	blockB = enc.Append(blockB, recs[1])

	dec := NewCompactDecoder(w)
	gotA, err := dec.DecodeBlock(blockA)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gotA, recs[:2]) {
		t.Fatalf("got %+v, want %+v", gotA, recs[:2])
	}

	// blockB must decode correctly on its own even though it was encoded
	// after blockA's state: decoding blockB independently must not reuse
	// blockA's prefix.
	dec2 := NewCompactDecoder(w)
	gotB, err := dec2.DecodeBlock(blockB)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gotB, recs[1:2]) {
		t.Fatalf("got %+v, want %+v", gotB, recs[1:2])
	}
}

func TestCompactTruncatedBlock(t *testing.T) {
	w := NewFieldWidths(16, 20, 20, 1000, 4)
	enc := NewCompactEncoder(w)
	enc.Reset()
	block := enc.Append(nil, sampleRecords()[0])

	dec := NewCompactDecoder(w)
	if _, err := dec.DecodeBlock(block[:len(block)-1]); err == nil {
		t.Fatal("expected error on truncated compact block")
	}
}

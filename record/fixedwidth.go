package record

import "github.com/pkg/errors"

// ErrTruncatedBlock is returned when a packed block ends mid-record.
var ErrTruncatedBlock = errors.New("bkc/record: truncated block")

// PackFixedWidth appends one record's fixed-width little-endian encoding
// to buf: five fields concatenated at the widths given by w, each field
// little-endian (spec.md §4.6 "Fixed-width form").
func PackFixedWidth(buf []byte, rec Record, w FieldWidths) []byte {
	start := len(buf)
	buf = append(buf, make([]byte, w.Total())...)
	off := start
	putUintLE(buf[off:], rec.SampleID, w.SampleID)
	off += w.SampleID
	putUintLE(buf[off:], rec.Barcode, w.Barcode)
	off += w.Barcode
	putUintLE(buf[off:], rec.Leader, w.Leader)
	off += w.Leader
	putUintLE(buf[off:], rec.Follower, w.Follower)
	off += w.Follower
	putUintLE(buf[off:], rec.Count, w.Counter)
	return buf
}

// UnpackFixedWidth decodes every record from a block produced by repeated
// PackFixedWidth calls.
func UnpackFixedWidth(block []byte, w FieldWidths) ([]Record, error) {
	recSize := w.Total()
	if recSize == 0 || len(block)%recSize != 0 {
		return nil, errors.Wrapf(ErrTruncatedBlock, "block length %d not a multiple of record size %d", len(block), recSize)
	}
	n := len(block) / recSize
	out := make([]Record, n)
	off := 0
	for i := 0; i < n; i++ {
		var rec Record
		rec.SampleID = getUintLE(block[off:], w.SampleID)
		off += w.SampleID
		rec.Barcode = getUintLE(block[off:], w.Barcode)
		off += w.Barcode
		rec.Leader = getUintLE(block[off:], w.Leader)
		off += w.Leader
		rec.Follower = getUintLE(block[off:], w.Follower)
		off += w.Follower
		rec.Count = getUintLE(block[off:], w.Counter)
		off += w.Counter
		out[i] = rec
	}
	return out, nil
}

package record

// CompactEncoder builds compact-encoded blocks: each record is the
// big-endian concatenation of its five fields, compressed against the
// previous record in the same block by a single shared-prefix-length byte
// followed by the remainder bytes (spec.md §4.6 "Compact form"). A block
// boundary resets the encoder's notion of "previous record" so every
// packed block independently decodes without looking outside itself
// (spec.md §4.6 "Flushing"), mirrored on the original implementation's
// COMPACT_ENCODING path in processreads.cpp (pack_records).
type CompactEncoder struct {
	w    FieldWidths
	prev []byte
	buf  []byte
}

// NewCompactEncoder returns an encoder for the given field widths.
func NewCompactEncoder(w FieldWidths) *CompactEncoder {
	return &CompactEncoder{
		w:   w,
		buf: make([]byte, w.Total()),
	}
}

// Reset clears the encoder's shared-prefix state. Call it at the start of
// every new block so blocks decode independently.
func (e *CompactEncoder) Reset() {
	e.prev = nil
}

// Append encodes rec and appends it to dst, returning the extended slice.
func (e *CompactEncoder) Append(dst []byte, rec Record) []byte {
	full := e.buf
	off := 0
	putUintBE(full[off:], rec.SampleID, e.w.SampleID)
	off += e.w.SampleID
	putUintBE(full[off:], rec.Barcode, e.w.Barcode)
	off += e.w.Barcode
	putUintBE(full[off:], rec.Leader, e.w.Leader)
	off += e.w.Leader
	putUintBE(full[off:], rec.Follower, e.w.Follower)
	off += e.w.Follower
	putUintBE(full[off:], rec.Count, e.w.Counter)

	shared := 0
	if e.prev != nil {
		max := len(full)
		if len(e.prev) < max {
			max = len(e.prev)
		}
		for shared < max && full[shared] == e.prev[shared] {
			shared++
		}
		if shared > 255 {
			shared = 255
		}
	}

	dst = append(dst, byte(shared))
	dst = append(dst, full[shared:]...)

	if e.prev == nil {
		e.prev = make([]byte, len(full))
	}
	copy(e.prev, full)
	return dst
}

// CompactDecoder reverses CompactEncoder within one block.
type CompactDecoder struct {
	w    FieldWidths
	prev []byte
}

// NewCompactDecoder returns a decoder for the given field widths.
func NewCompactDecoder(w FieldWidths) *CompactDecoder {
	return &CompactDecoder{w: w}
}

// Reset clears shared-prefix state at a block boundary, matching
// CompactEncoder.Reset.
func (d *CompactDecoder) Reset() {
	d.prev = nil
}

// DecodeBlock decodes every record in one compact-encoded block, which
// must have been produced by a single uninterrupted Append sequence
// between Reset calls.
func (d *CompactDecoder) DecodeBlock(block []byte) ([]Record, error) {
	d.Reset()
	full := d.w.Total()
	var out []Record
	for len(block) > 0 {
		shared := int(block[0])
		block = block[1:]
		remainderLen := full - shared
		if shared > full || remainderLen > len(block) {
			return nil, ErrTruncatedBlock
		}
		rec := make([]byte, full)
		if d.prev != nil {
			copy(rec[:shared], d.prev[:shared])
		} else if shared != 0 {
			return nil, ErrTruncatedBlock
		}
		copy(rec[shared:], block[:remainderLen])
		block = block[remainderLen:]

		if d.prev == nil {
			d.prev = make([]byte, full)
		}
		copy(d.prev, rec)

		off := 0
		var r Record
		r.SampleID = getUintBE(rec[off:], d.w.SampleID)
		off += d.w.SampleID
		r.Barcode = getUintBE(rec[off:], d.w.Barcode)
		off += d.w.Barcode
		r.Leader = getUintBE(rec[off:], d.w.Leader)
		off += d.w.Leader
		r.Follower = getUintBE(rec[off:], d.w.Follower)
		off += d.w.Follower
		r.Count = getUintBE(rec[off:], d.w.Counter)
		out = append(out, r)
	}
	return out, nil
}

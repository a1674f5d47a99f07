// Package raw provides the byte-level primitives for sensor raw
// streams: fixed-width little-endian word extraction and RAW file
// header parsing.
package raw

import (
	"encoding/binary"
	"errors"
)

// ErrEndOfBuffer signals that fewer bytes remain than the requested
// word width. It is a control signal, not a failure: the caller keeps
// the remaining tail and retries once more input arrives.
var ErrEndOfBuffer = errors.New("end of buffer")

// Reader is a cursor over one input chunk. Words are always
// little-endian; sensors emit little-endian streams regardless of host
// byte order.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Next16 extracts the next 16-bit word, advancing the cursor by 2 bytes.
func (r *Reader) Next16() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, ErrEndOfBuffer
	}
	w := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return w, nil
}

// Next32 extracts the next 32-bit word, advancing the cursor by 4 bytes.
func (r *Reader) Next32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, ErrEndOfBuffer
	}
	w := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return w, nil
}

// Next64 extracts the next 64-bit word, advancing the cursor by 8 bytes.
func (r *Reader) Next64() (uint64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, ErrEndOfBuffer
	}
	w := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return w, nil
}

// Remaining returns the undecoded tail of the chunk. After a word
// extraction fails with ErrEndOfBuffer this tail is shorter than one
// word and must be carried into the next chunk.
func (r *Reader) Remaining() []byte {
	return r.buf[r.pos:]
}

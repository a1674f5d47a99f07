// Package decoder implements the wire-format state machines that turn
// raw sensor byte streams into decoded events. One decoder instance
// owns the full decode state for a session: partial words carried
// across chunk boundaries, pending coordinates, open vectors, and the
// timestamp accumulator. Decoding the same bytes therefore yields the
// same events regardless of how the input is chunked.
package decoder

import (
	"fmt"

	"github.com/evtscope/evtscope/pkg/types"
)

// Decoder is the uniform contract over the three wire formats. Decode
// appends the events decoded from chunk to out and returns the extended
// slice; it never fails. Glitched words are skipped or applied
// best-effort and counted in MalformedWords.
type Decoder interface {
	// Format returns the wire format this decoder handles.
	Format() types.Format

	// Decode consumes chunk, carrying any trailing partial word into
	// the next call, and appends decoded events to out.
	Decode(chunk []byte, out []types.Event) []types.Event

	// MalformedWords returns the number of protocol violations seen so
	// far: out-of-context CONTINUED words, address/vector words with no
	// pending row, and non-monotonic TIME_HIGH words.
	MalformedWords() uint64

	// CurrentTime returns the current reconstructed timestamp in
	// microseconds, or 0 before the first TIME_HIGH word.
	CurrentTime() uint64
}

// New returns a fresh decoder for the given format. Decoder state is
// per-session: never reuse a decoder across input streams.
func New(format types.Format) (Decoder, error) {
	switch format {
	case types.FormatEVT2:
		return newEVT2(), nil
	case types.FormatEVT21:
		return newEVT21(), nil
	case types.FormatEVT3:
		return newEVT3(), nil
	default:
		return nil, fmt.Errorf("%w: no decoder for %v", types.ErrUnknownFormat, format)
	}
}

// carry holds the trailing bytes of a chunk that did not fill a whole
// word. It is embedded by each decoder and completed from the head of
// the next chunk.
type carry struct {
	buf [8]byte
	n   int
}

// fill moves bytes from chunk into the carry until it holds wordSize
// bytes, returning the unread rest of chunk and whether a full word is
// now available.
func (c *carry) fill(chunk []byte, wordSize int) (rest []byte, full bool) {
	n := copy(c.buf[c.n:wordSize], chunk)
	c.n += n
	return chunk[n:], c.n == wordSize
}

// store saves the sub-word tail of a chunk for the next call.
func (c *carry) store(tail []byte) {
	c.n = copy(c.buf[:], tail)
}

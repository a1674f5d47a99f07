package decoder

import (
	"math/bits"

	"github.com/evtscope/evtscope/internal/raw"
	"github.com/evtscope/evtscope/pkg/types"
)

// EVT2.1 packs events into 64-bit little-endian words with the type tag
// in bits 63:60. CD words are vectorized: bits 59:54 hold the inline
// time-low field, bits 53:43 the base x (32-aligned), bits 42:32 the
// row, and bits 31:0 a validity mask where each set bit materializes
// one event at base_x + bit_index.
const (
	evt21Neg       = 0x0
	evt21Pos       = 0x1
	evt21TimeHigh  = 0x8
	evt21Trigger   = 0xA
	evt21Others    = 0xE
	evt21Continued = 0xF
)

type evt21Decoder struct {
	time      timeState
	malformed uint64
	carry     carry

	// Open vector state for CONTINUED extension. Any non-CONTINUED word
	// closes the vector. A vector that arrived before the first
	// TIME_HIGH stays open so chained CONTINUED words are not counted
	// malformed, but nothing is emitted until a time base exists.
	vecOpen  bool
	vecReady bool
	vecX     uint16
	vecY     uint16
	vecPol   bool
	vecT     uint64
}

func newEVT21() *evt21Decoder {
	return &evt21Decoder{time: newTimeState(6, 28, evt2LoopThreshold)}
}

func (d *evt21Decoder) Format() types.Format   { return types.FormatEVT21 }
func (d *evt21Decoder) MalformedWords() uint64 { return d.malformed }
func (d *evt21Decoder) CurrentTime() uint64    { return d.time.now() }

func (d *evt21Decoder) Decode(chunk []byte, out []types.Event) []types.Event {
	if d.carry.n > 0 {
		rest, full := d.carry.fill(chunk, 8)
		if !full {
			return out
		}
		chunk = rest
		r := raw.NewReader(d.carry.buf[:8])
		w, _ := r.Next64()
		d.carry.n = 0
		out = d.decodeWord(w, out)
	}

	r := raw.NewReader(chunk)
	for {
		w, err := r.Next64()
		if err != nil {
			break
		}
		out = d.decodeWord(w, out)
	}
	d.carry.store(r.Remaining())
	return out
}

func (d *evt21Decoder) decodeWord(w uint64, out []types.Event) []types.Event {
	tag := w >> 60
	switch tag {
	case evt21Neg, evt21Pos:
		d.vecX = uint16((w >> 43) & 0x7FF)
		d.vecY = uint16((w >> 32) & 0x7FF)
		d.vecPol = tag == evt21Pos
		d.vecOpen = true
		d.vecReady = d.time.ready()
		if !d.vecReady {
			return out
		}
		d.time.setLow((w >> 54) & 0x3F)
		d.vecT = d.time.now()
		return d.emitMask(uint32(w), out)

	case evt21TimeHigh:
		d.vecOpen = false
		if d.time.setHigh((w >> 32) & 0x0FFFFFFF) {
			d.malformed++
		}

	case evt21Trigger:
		d.vecOpen = false
		if !d.time.ready() {
			return out
		}
		d.time.setLow((w >> 54) & 0x3F)
		return append(out, types.Event{
			Kind:     types.KindExtTrigger,
			ID:       uint8((w >> 40) & 0x1F),
			Polarity: (w>>32)&0x1 == 1,
			T:        d.time.now(),
		})

	case evt21Continued:
		if !d.vecOpen {
			d.malformed++
			return out
		}
		// Each CONTINUED word carries the next 32 mask bits of the open
		// vector; the base advances so chained words keep extending.
		d.vecX += 32
		if !d.vecReady {
			return out
		}
		return d.emitMask(uint32(w), out)

	default:
		d.vecOpen = false
	}
	return out
}

// emitMask materializes one CD event per set mask bit, in ascending
// bit-index order.
func (d *evt21Decoder) emitMask(mask uint32, out []types.Event) []types.Event {
	for mask != 0 {
		offset := uint16(bits.TrailingZeros32(mask))
		mask &= mask - 1
		out = append(out, types.Event{
			Kind:     types.KindCD,
			X:        d.vecX + offset,
			Y:        d.vecY,
			Polarity: d.vecPol,
			T:        d.vecT,
		})
	}
	return out
}

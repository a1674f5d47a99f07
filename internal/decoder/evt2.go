package decoder

import (
	"github.com/evtscope/evtscope/internal/raw"
	"github.com/evtscope/evtscope/pkg/types"
)

// EVT2 packs events into 32-bit little-endian words with the type tag
// in bits 31:28:
//
//	31        28 27                        0
//	+---4 bits--+-------28 bits------------+
//	| Event Type|          Payload         |
//	+-----------+--------------------------+
//
// CD words carry a 6-bit time-low field inline (bits 27:22), x in bits
// 21:11 and y in bits 10:0. TIME_HIGH words carry the upper 28 bits of
// the clock.
const (
	evt2CDOff     = 0x0
	evt2CDOn      = 0x1
	evt2TimeHigh  = 0x8
	evt2Trigger   = 0xA
	evt2Others    = 0xE
	evt2Continued = 0xF
)

// EVT2 time-high wraps every 2^34 µs; 10 ms of slack distinguishes a
// wrap from an out-of-order word.
const evt2LoopThreshold = 10000

type evt2Decoder struct {
	time      timeState
	malformed uint64
	carry     carry
}

func newEVT2() *evt2Decoder {
	return &evt2Decoder{time: newTimeState(6, 28, evt2LoopThreshold)}
}

func (d *evt2Decoder) Format() types.Format   { return types.FormatEVT2 }
func (d *evt2Decoder) MalformedWords() uint64 { return d.malformed }
func (d *evt2Decoder) CurrentTime() uint64    { return d.time.now() }

func (d *evt2Decoder) Decode(chunk []byte, out []types.Event) []types.Event {
	if d.carry.n > 0 {
		rest, full := d.carry.fill(chunk, 4)
		if !full {
			return out
		}
		chunk = rest
		r := raw.NewReader(d.carry.buf[:4])
		w, _ := r.Next32()
		d.carry.n = 0
		out = d.decodeWord(w, out)
	}

	r := raw.NewReader(chunk)
	for {
		w, err := r.Next32()
		if err != nil {
			break
		}
		out = d.decodeWord(w, out)
	}
	d.carry.store(r.Remaining())
	return out
}

func (d *evt2Decoder) decodeWord(w uint32, out []types.Event) []types.Event {
	switch w >> 28 {
	case evt2CDOff, evt2CDOn:
		if !d.time.ready() {
			return out
		}
		d.time.setLow(uint64((w >> 22) & 0x3F))
		return append(out, types.Event{
			Kind:     types.KindCD,
			X:        uint16((w >> 11) & 0x7FF),
			Y:        uint16(w & 0x7FF),
			Polarity: w>>28 == evt2CDOn,
			T:        d.time.now(),
		})

	case evt2TimeHigh:
		if d.time.setHigh(uint64(w & 0x0FFFFFFF)) {
			d.malformed++
		}

	case evt2Trigger:
		if !d.time.ready() {
			return out
		}
		d.time.setLow(uint64((w >> 22) & 0x3F))
		return append(out, types.Event{
			Kind:     types.KindExtTrigger,
			ID:       uint8((w >> 8) & 0x1F),
			Polarity: w&0x1 == 1,
			T:        d.time.now(),
		})

	case evt2Continued:
		// EVT2 has no vectorized words, so there is nothing a CONTINUED
		// word could extend.
		d.malformed++

	default:
		// OTHERS and reserved tags carry no event payload.
	}
	return out
}

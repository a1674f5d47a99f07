package decoder

import (
	"github.com/evtscope/evtscope/internal/raw"
	"github.com/evtscope/evtscope/pkg/types"
)

// EVT3 packs events into 16-bit little-endian words with the type tag
// in bits 15:12. Coordinates arrive split across words: EVT_ADDR_Y sets
// the pending row, then EVT_ADDR_X words emit single events and
// VECT_BASE_X/VECT_12/VECT_8 words emit runs of events at ascending x
// offsets from a base that advances with each vector word. TIME_LOW and
// TIME_HIGH each carry 12 bits of the clock.
const (
	evt3AddrY       = 0x0
	evt3AddrX       = 0x2
	evt3VectBaseX   = 0x3
	evt3Vect12      = 0x4
	evt3Vect8       = 0x5
	evt3TimeLow     = 0x6
	evt3Continued12 = 0x7
	evt3TimeHigh    = 0x8
	evt3Trigger     = 0xA
	evt3Others      = 0xE
)

// EVT3 time-high wraps every 2^24 µs.
const evt3LoopThreshold = 10 << 12

type evt3Decoder struct {
	time      timeState
	malformed uint64
	carry     carry

	y       uint16
	hasY    bool
	vectX   uint16
	pol     bool
	vecOpen bool
}

func newEVT3() *evt3Decoder {
	return &evt3Decoder{time: newTimeState(12, 12, evt3LoopThreshold)}
}

func (d *evt3Decoder) Format() types.Format   { return types.FormatEVT3 }
func (d *evt3Decoder) MalformedWords() uint64 { return d.malformed }
func (d *evt3Decoder) CurrentTime() uint64    { return d.time.now() }

func (d *evt3Decoder) Decode(chunk []byte, out []types.Event) []types.Event {
	if d.carry.n > 0 {
		rest, full := d.carry.fill(chunk, 2)
		if !full {
			return out
		}
		chunk = rest
		r := raw.NewReader(d.carry.buf[:2])
		w, _ := r.Next16()
		d.carry.n = 0
		out = d.decodeWord(w, out)
	}

	r := raw.NewReader(chunk)
	for {
		w, err := r.Next16()
		if err != nil {
			break
		}
		out = d.decodeWord(w, out)
	}
	d.carry.store(r.Remaining())
	return out
}

func (d *evt3Decoder) decodeWord(w uint16, out []types.Event) []types.Event {
	switch w >> 12 {
	case evt3AddrY:
		d.vecOpen = false
		d.y = w & 0x7FF
		d.hasY = true

	case evt3AddrX:
		d.vecOpen = false
		if !d.hasY {
			d.malformed++
			return out
		}
		if !d.time.ready() {
			return out
		}
		return append(out, types.Event{
			Kind:     types.KindCD,
			X:        w & 0x7FF,
			Y:        d.y,
			Polarity: (w>>11)&0x1 == 1,
			T:        d.time.now(),
		})

	case evt3VectBaseX:
		d.vecOpen = false
		d.vectX = w & 0x7FF
		d.pol = (w>>11)&0x1 == 1

	case evt3Vect12:
		return d.emitVector(w&0xFFF, 12, out)

	case evt3Vect8:
		return d.emitVector(w&0xFF, 8, out)

	case evt3Continued12:
		if !d.vecOpen {
			d.malformed++
			return out
		}
		return d.emitVector(w&0xFFF, 12, out)

	case evt3TimeLow:
		d.vecOpen = false
		d.time.setLow(uint64(w & 0xFFF))

	case evt3TimeHigh:
		d.vecOpen = false
		if d.time.setHigh(uint64(w & 0xFFF)) {
			d.malformed++
		}

	case evt3Trigger:
		d.vecOpen = false
		if !d.time.ready() {
			return out
		}
		return append(out, types.Event{
			Kind:     types.KindExtTrigger,
			ID:       uint8((w >> 8) & 0xF),
			Polarity: w&0x1 == 1,
			T:        d.time.now(),
		})

	default:
		// OTHERS and reserved tags carry no event payload.
		d.vecOpen = false
	}
	return out
}

// emitVector materializes the set bits of valid as CD events at
// ascending offsets from the vector base, then advances the base by the
// vector width so consecutive vector words cover consecutive pixel
// groups.
func (d *evt3Decoder) emitVector(valid uint16, width uint16, out []types.Event) []types.Event {
	if !d.hasY {
		d.malformed++
		d.vectX += width
		return out
	}
	// Before the first TIME_HIGH the run is dropped, but the vector
	// stays open and its base advances so chained CONTINUED words are
	// not miscounted as malformed.
	if !d.time.ready() {
		d.vectX += width
		d.vecOpen = true
		return out
	}

	t := d.time.now()
	for i := uint16(0); i < width; i++ {
		if valid&(1<<i) != 0 {
			out = append(out, types.Event{
				Kind:     types.KindCD,
				X:        d.vectX + i,
				Y:        d.y,
				Polarity: d.pol,
				T:        t,
			})
		}
	}
	d.vectX += width
	d.vecOpen = true
	return out
}

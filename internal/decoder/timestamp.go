package decoder

// timeState reconstructs a monotonic 64-bit microsecond clock from the
// narrow in-band time fields of a wire format. The high field anchors
// wraparound detection: when a TIME_HIGH word decreases by almost the
// full span of the counter, the parent counter wrapped and one loop
// period is added. Low fields replace the lower portion of the clock
// and never trigger loop detection.
type timeState struct {
	lowWidth   uint   // bits in the low time field
	loopPeriod uint64 // full span of the combined counter in µs
	threshold  uint64 // slack below a full-span decrease that still counts as a wrap

	base    uint64 // high bits shifted into place, loop periods applied
	low     uint64 // last low field seen
	loops   uint64
	hasBase bool
}

func newTimeState(lowWidth, highWidth uint, threshold uint64) timeState {
	return timeState{
		lowWidth:   lowWidth,
		loopPeriod: 1 << (lowWidth + highWidth),
		threshold:  threshold,
	}
}

// setHigh applies a TIME_HIGH field. It reports true when the new value
// is non-monotonic even after wraparound correction; the value is still
// applied so decoding continues best-effort.
func (ts *timeState) setHigh(raw uint64) (malformed bool) {
	newBase := (raw << ts.lowWidth) + ts.loops*ts.loopPeriod

	if !ts.hasBase {
		ts.hasBase = true
		ts.base = newBase
		return false
	}

	if ts.base > newBase {
		// maxBase is the highest base representable within one loop.
		maxBase := ts.loopPeriod - (uint64(1) << ts.lowWidth)
		if ts.base-newBase >= maxBase-ts.threshold {
			newBase += ts.loopPeriod
			ts.loops++
		} else {
			ts.base = newBase
			return true
		}
	}

	ts.base = newBase
	return false
}

// setLow applies a low time field. No epoch adjustment: TIME_HIGH words
// are the sole wrap boundary.
func (ts *timeState) setLow(raw uint64) {
	ts.low = raw
}

// ready reports whether a time base has been established. Events
// arriving before the first TIME_HIGH word have no meaningful timestamp
// and are dropped by the decoders.
func (ts *timeState) ready() bool {
	return ts.hasBase
}

// now returns the current reconstructed timestamp.
func (ts *timeState) now() uint64 {
	return ts.base + ts.low
}

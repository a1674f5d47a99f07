package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeState_ReadyOnlyAfterFirstHigh(t *testing.T) {
	ts := newTimeState(12, 12, evt3LoopThreshold)
	assert.False(t, ts.ready())
	assert.Zero(t, ts.now())

	ts.setLow(0x123)
	assert.False(t, ts.ready())

	assert.False(t, ts.setHigh(0x001))
	assert.True(t, ts.ready())
	assert.Equal(t, uint64(1<<12+0x123), ts.now())
}

func TestTimeState_LowReplacesLowerBits(t *testing.T) {
	ts := newTimeState(6, 28, evt2LoopThreshold)
	ts.setHigh(0x100)

	ts.setLow(5)
	assert.Equal(t, uint64(0x100<<6+5), ts.now())
	ts.setLow(3)
	assert.Equal(t, uint64(0x100<<6+3), ts.now())
}

func TestTimeState_WraparoundAddsLoopPeriod(t *testing.T) {
	ts := newTimeState(12, 12, evt3LoopThreshold)
	ts.setHigh(0xFFF)
	before := ts.now()

	// The 12-bit high counter wraps: the reconstructed clock keeps
	// climbing by one loop period of 2^24 µs.
	assert.False(t, ts.setHigh(0x000))
	assert.Equal(t, uint64(1)<<24, ts.now())
	assert.Greater(t, ts.now(), before)

	// The next wrap stacks a second period.
	ts.setHigh(0xFFF)
	assert.False(t, ts.setHigh(0x001))
	assert.Equal(t, uint64(2)<<24|uint64(1)<<12, ts.now())
}

func TestTimeState_WrapWithinThreshold(t *testing.T) {
	ts := newTimeState(12, 12, evt3LoopThreshold)
	ts.setHigh(0xFFA)

	// Landing a few units past the wrap still counts as a wrap, not a
	// rewind.
	assert.False(t, ts.setHigh(0x004))
	assert.Equal(t, uint64(1)<<24|uint64(4)<<12, ts.now())
}

func TestTimeState_NonMonotonicHighIsMalformed(t *testing.T) {
	ts := newTimeState(12, 12, evt3LoopThreshold)
	ts.setHigh(0x100)

	// A small decrease is not a wrap. It is reported malformed but still
	// applied so decoding continues.
	assert.True(t, ts.setHigh(0x0FF))
	assert.Equal(t, uint64(0x0FF)<<12, ts.now())
}

func TestTimeState_RepeatedHighIsNotMalformed(t *testing.T) {
	ts := newTimeState(12, 12, evt3LoopThreshold)
	ts.setHigh(0x100)
	assert.False(t, ts.setHigh(0x100))
	assert.Equal(t, uint64(0x100)<<12, ts.now())
}

func TestTimeState_EVT2WideCounter(t *testing.T) {
	ts := newTimeState(6, 28, evt2LoopThreshold)
	ts.setHigh(0x0FFFFFFF)
	assert.False(t, ts.setHigh(0x0000000))
	assert.Equal(t, uint64(1)<<34, ts.now())
}

// Package ring provides the fixed-capacity display buffer shared
// between the decode task and the render task. The buffer holds a
// sliding window of the most recent events: pushes always succeed and
// evict the oldest element when full.
package ring

import (
	"errors"
	"sync"

	"github.com/evtscope/evtscope/pkg/types"
)

// ErrZeroCapacity is returned when a buffer is requested with no room
// for any event.
var ErrZeroCapacity = errors.New("ring buffer capacity must be positive")

// Buffer is a single-producer/single-consumer sliding window. The
// mutex is held only for O(1) pushes and for the copy in Snapshot, so
// neither side can block the other for the duration of a frame.
type Buffer struct {
	mu     sync.Mutex
	events []types.Event
	head   int // index of the oldest element
	size   int
}

// New creates a Buffer holding at most capacity events.
func New(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, ErrZeroCapacity
	}
	return &Buffer{events: make([]types.Event, capacity)}, nil
}

// Push appends ev, evicting the oldest event when the buffer is full.
func (b *Buffer) Push(ev types.Event) {
	b.mu.Lock()
	tail := (b.head + b.size) % len(b.events)
	b.events[tail] = ev
	if b.size < len(b.events) {
		b.size++
	} else {
		b.head = (b.head + 1) % len(b.events)
	}
	b.mu.Unlock()
}

// Snapshot copies the held events in original relative order, oldest
// first. The returned slice is owned by the caller.
func (b *Buffer) Snapshot() []types.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]types.Event, b.size)
	n := copy(out, b.events[b.head:min(b.head+b.size, len(b.events))])
	copy(out[n:], b.events[:b.size-n])
	return out
}

// Len returns the number of events currently held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.events)
}

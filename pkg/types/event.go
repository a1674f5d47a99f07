// Package types provides core data types for evtscope.
package types

// EventKind identifies the variant carried by an Event.
type EventKind uint8

const (
	// KindCD is a contrast-detection event: pixel (X, Y) crossed a
	// brightness-change threshold with the given polarity.
	KindCD EventKind = iota

	// KindExtTrigger is an external synchronization pulse on channel ID.
	KindExtTrigger

	// KindTimeRef is an in-band clock update with no pixel payload.
	// Decoders consume these internally; they are not published to the
	// display ring.
	KindTimeRef
)

// Event is a single decoded sensor event. It is a flat struct rather
// than an interface so decoders can emit events without allocating.
type Event struct {
	Kind     EventKind
	X        uint16
	Y        uint16
	Polarity bool
	ID       uint8
	T        uint64
}

// String returns the short name of the event kind.
func (k EventKind) String() string {
	switch k {
	case KindCD:
		return "cd"
	case KindExtTrigger:
		return "ext_trigger"
	case KindTimeRef:
		return "time_ref"
	default:
		return "unknown"
	}
}

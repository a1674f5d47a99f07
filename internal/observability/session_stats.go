// Package observability provides decode-session statistics consumed by
// the renderer and the final session report.
package observability

import "sync/atomic"

// SessionStats tracks counters for one decode session. All methods are
// safe for concurrent use: the decode task writes, the render task
// reads every frame.
type SessionStats struct {
	eventsDecoded  atomic.Uint64
	cdEvents       atomic.Uint64
	triggerEvents  atomic.Uint64
	malformedWords atomic.Uint64
	bytesRead      atomic.Uint64
	currentTime    atomic.Uint64
}

// StatsSnapshot is a consistent-enough view of the counters for one
// rendered frame.
type StatsSnapshot struct {
	EventsDecoded  uint64
	CDEvents       uint64
	TriggerEvents  uint64
	MalformedWords uint64
	BytesRead      uint64
	CurrentTime    uint64
}

// NewSessionStats returns zeroed counters.
func NewSessionStats() *SessionStats {
	return &SessionStats{}
}

// AddEvents records decoded event counts for one chunk.
func (s *SessionStats) AddEvents(cd, triggers uint64) {
	s.eventsDecoded.Add(cd + triggers)
	s.cdEvents.Add(cd)
	s.triggerEvents.Add(triggers)
}

// AddBytes records consumed input bytes.
func (s *SessionStats) AddBytes(n uint64) {
	s.bytesRead.Add(n)
}

// SetMalformedWords publishes the decoder's running malformed-word count.
func (s *SessionStats) SetMalformedWords(n uint64) {
	s.malformedWords.Store(n)
}

// SetCurrentTime publishes the latest reconstructed timestamp in µs.
func (s *SessionStats) SetCurrentTime(t uint64) {
	s.currentTime.Store(t)
}

// Snapshot reads all counters.
func (s *SessionStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		EventsDecoded:  s.eventsDecoded.Load(),
		CDEvents:       s.cdEvents.Load(),
		TriggerEvents:  s.triggerEvents.Load(),
		MalformedWords: s.malformedWords.Load(),
		BytesRead:      s.bytesRead.Load(),
		CurrentTime:    s.currentTime.Load(),
	}
}

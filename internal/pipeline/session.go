// Package pipeline drives a format decoder over an input byte stream
// and publishes decoded events to the display ring buffer, applying
// optional time shifting and real-time pacing along the way.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/evtscope/evtscope/internal/decoder"
	"github.com/evtscope/evtscope/internal/observability"
	"github.com/evtscope/evtscope/internal/ring"
	"github.com/evtscope/evtscope/internal/source"
	"github.com/evtscope/evtscope/pkg/types"
)

// State is the lifecycle position of a Session.
type State int32

const (
	StateIdle State = iota
	StateStreaming
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrSessionReused is returned when Run is called on a session that has
// already run. Decoder state is single-use; construct a fresh session
// to decode again.
var ErrSessionReused = errors.New("session already consumed")

const defaultChunkSize = 32 * 1024

// Options control per-session behavior.
type Options struct {
	// TimeShift rebases timestamps so the first event is at t = 0.
	TimeShift bool

	// RealTime paces event publication against the wall clock so the
	// stream plays back at recorded speed. A late consumer is never
	// compensated for: the producer sleeps to the scheduled time and
	// accepts ring eviction pressure instead of catching up.
	RealTime bool

	// ChunkSize is the input read size in bytes (default 32 KiB).
	ChunkSize int
}

// Session decodes one input stream to completion. It owns the decoder
// and is the sole writer of the ring buffer.
type Session struct {
	id    uuid.UUID
	dec   decoder.Decoder
	src   io.Reader
	ring  *ring.Buffer
	stats *observability.SessionStats
	opts  Options

	state State

	shiftOrigin   uint64
	shiftSet      bool
	paceOrigin    time.Time
	paceFirstT    uint64
	paceOriginSet bool
	scratch       []types.Event
}

// NewSession validates the wiring and returns an idle session.
func NewSession(dec decoder.Decoder, src io.Reader, buf *ring.Buffer, stats *observability.SessionStats, opts Options) (*Session, error) {
	if dec == nil {
		return nil, errors.New("pipeline: nil decoder")
	}
	if src == nil {
		return nil, errors.New("pipeline: nil input source")
	}
	if buf == nil {
		return nil, errors.New("pipeline: nil ring buffer")
	}
	if stats == nil {
		stats = observability.NewSessionStats()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}

	return &Session{
		id:      uuid.New(),
		dec:     dec,
		src:     src,
		ring:    buf,
		stats:   stats,
		opts:    opts,
		state:   StateIdle,
		scratch: make([]types.Event, 0, 4096),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Stats returns the session counters.
func (s *Session) Stats() *observability.SessionStats { return s.stats }

// Run decodes the input to EOF, publishing events to the ring buffer.
// It returns nil on clean end of stream (any pending partial multi-word
// event is discarded), ctx.Err() on cancellation, and a
// source.ErrSourceFailure-wrapped error when the input faults. The
// session ends in StateClosed in every case.
func (s *Session) Run(ctx context.Context) error {
	if s.state != StateIdle {
		return ErrSessionReused
	}
	s.state = StateStreaming
	defer func() { s.state = StateClosed }()

	buf := make([]byte, s.opts.ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := s.src.Read(buf)
		if n > 0 {
			s.stats.AddBytes(uint64(n))
			events := s.dec.Decode(buf[:n], s.scratch[:0])
			s.scratch = events
			if pubErr := s.publish(ctx, events); pubErr != nil {
				return pubErr
			}
			s.updateDiagnostics()
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, source.ErrSourceFailure) {
				return err
			}
			return fmt.Errorf("%w: %v", source.ErrSourceFailure, err)
		}
	}

	// End of input: the decoder may still hold a partial multi-word
	// event; it is neither emitted nor an error.
	s.state = StateDraining
	s.updateDiagnostics()
	return nil
}

// publish applies time shift and pacing to each event and pushes it
// into the ring.
func (s *Session) publish(ctx context.Context, events []types.Event) error {
	var cd, triggers uint64
	for _, ev := range events {
		if s.opts.TimeShift {
			if !s.shiftSet {
				s.shiftOrigin = ev.T
				s.shiftSet = true
			}
			ev.T -= s.shiftOrigin
		}

		if s.opts.RealTime {
			if err := s.pace(ctx, ev.T); err != nil {
				return err
			}
		}

		s.ring.Push(ev)
		switch ev.Kind {
		case types.KindCD:
			cd++
		case types.KindExtTrigger:
			triggers++
		}
	}
	s.stats.AddEvents(cd, triggers)
	return nil
}

// pace sleeps until the event's scheduled wall-clock time. Wakes are
// absolute offsets of the event from the first paced event, anchored to
// the wall clock at that first event, so sleep error never accumulates
// and a stream whose clock starts hours into sensor uptime still plays
// immediately. A wake time already in the past means no sleep.
func (s *Session) pace(ctx context.Context, t uint64) error {
	if !s.paceOriginSet {
		s.paceOrigin = time.Now()
		s.paceFirstT = t
		s.paceOriginSet = true
	}
	if t < s.paceFirstT {
		return nil
	}

	wake := s.paceOrigin.Add(time.Duration(t-s.paceFirstT) * time.Microsecond)
	d := time.Until(wake)
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// updateDiagnostics publishes the decoder-side counters, mapping the
// current reconstructed timestamp into the shifted domain when time
// shifting is active.
func (s *Session) updateDiagnostics() {
	s.stats.SetMalformedWords(s.dec.MalformedWords())

	cur := s.dec.CurrentTime()
	if s.opts.TimeShift && s.shiftSet {
		if cur >= s.shiftOrigin {
			cur -= s.shiftOrigin
		} else {
			cur = 0
		}
	}
	s.stats.SetCurrentTime(cur)
}

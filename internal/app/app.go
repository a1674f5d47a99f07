// Package app wires the decode pipeline and the terminal renderer into
// one application lifecycle: a decode task feeding the display ring and
// a render task consuming it, both stopping on quit or end of stream.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/evtscope/evtscope/internal/config"
	"github.com/evtscope/evtscope/internal/decoder"
	"github.com/evtscope/evtscope/internal/pipeline"
	"github.com/evtscope/evtscope/internal/raw"
	"github.com/evtscope/evtscope/internal/render"
	"github.com/evtscope/evtscope/internal/ring"
	"github.com/evtscope/evtscope/internal/source"
	"github.com/evtscope/evtscope/pkg/types"
)

// App runs one decode-and-view session.
type App struct {
	cfg      *config.Config
	headless bool
}

// New validates the configuration and returns an App. Invalid
// configuration is rejected here, before any input byte is read.
func New(cfg *config.Config, headless bool) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &App{cfg: cfg, headless: headless}, nil
}

// Run opens the input, decodes it, and renders until the stream ends or
// the user quits. In headless mode the renderer is skipped and Run
// returns when decoding completes.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rc, err := source.Open(ctx, a.cfg.Source, a.cfg.Input)
	if err != nil {
		return err
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, 64*1024)

	format, err := a.cfg.ParsedFormat()
	if err != nil {
		return err
	}

	header, headerErr := raw.ParseHeader(br)
	if format == types.FormatUnknown {
		if headerErr != nil {
			return fmt.Errorf("cannot determine format of %s: %w", a.cfg.Input, headerErr)
		}
		format = header.Format
	}

	sensor := a.cfg.Sensor
	if sensor.Width == 0 || sensor.Height == 0 {
		sensor = header.Geometry
	}

	dec, err := decoder.New(format)
	if err != nil {
		return err
	}

	ringBuf, err := ring.New(a.cfg.RingCapacity)
	if err != nil {
		return err
	}

	session, err := pipeline.NewSession(dec, br, ringBuf, nil, pipeline.Options{
		TimeShift: a.cfg.TimeShift,
		RealTime:  a.cfg.RealTime,
	})
	if err != nil {
		return err
	}

	slog.Info("session starting",
		"session_id", session.ID(),
		"input", a.cfg.Input,
		"format", format.String(),
		"time_shift", a.cfg.TimeShift,
		"real_time", a.cfg.RealTime,
	)

	start := time.Now()
	decodeErr := make(chan error, 1)
	go func() {
		decodeErr <- session.Run(ctx)
	}()

	var runErr error
	if a.headless {
		runErr = <-decodeErr
	} else {
		view, err := render.New(ringBuf, session.Stats(), sensor, a.cfg.FPS)
		if err != nil {
			cancel()
			<-decodeErr
			return err
		}
		if viewErr := view.Run(ctx, cancel); viewErr != nil {
			runErr = viewErr
		}
		cancel()
		if err := <-decodeErr; runErr == nil {
			runErr = err
		}
	}

	snap := session.Stats().Snapshot()
	slog.Info("session finished",
		"session_id", session.ID(),
		"state", session.State().String(),
		"duration", time.Since(start).Round(time.Millisecond),
		"events", snap.EventsDecoded,
		"cd_events", snap.CDEvents,
		"trigger_events", snap.TriggerEvents,
		"malformed_words", snap.MalformedWords,
		"bytes_read", snap.BytesRead,
	)

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

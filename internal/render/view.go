// Package render draws the live event view in the terminal: a scaled
// plot of the display ring contents plus a status line with session
// diagnostics. It is the sole reader of the ring buffer.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/evtscope/evtscope/internal/observability"
	"github.com/evtscope/evtscope/internal/ring"
	"github.com/evtscope/evtscope/pkg/types"
)

// Fallback geometry when neither config nor header provided one.
const (
	defaultSensorWidth  = 1280
	defaultSensorHeight = 720
)

// View owns the terminal screen and the render loop.
type View struct {
	screen tcell.Screen
	ring   *ring.Buffer
	stats  *observability.SessionStats
	sensor types.Geometry
	fps    int

	paused bool
	step   bool

	lastEvents uint64
	lastSample time.Time
	rate       float64
}

// New initializes the terminal screen. Call Run next; it restores the
// terminal on return.
func New(rb *ring.Buffer, stats *observability.SessionStats, sensor types.Geometry, fps int) (*View, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init screen: %w", err)
	}

	if sensor.Width == 0 || sensor.Height == 0 {
		sensor = types.Geometry{Width: defaultSensorWidth, Height: defaultSensorHeight}
	}

	return &View{
		screen: screen,
		ring:   rb,
		stats:  stats,
		sensor: sensor,
		fps:    fps,
	}, nil
}

// Run redraws at the configured frame rate and handles input until the
// user quits or ctx is cancelled. cancel is invoked on quit so the
// decode task stops at its next suspension point.
func (v *View) Run(ctx context.Context, cancel context.CancelFunc) error {
	defer v.screen.Fini()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go v.screen.ChannelEvents(events, quit)
	defer close(quit)

	ticker := time.NewTicker(time.Second / time.Duration(v.fps))
	defer ticker.Stop()

	v.lastSample = time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			if !v.paused || v.step {
				v.step = false
				v.draw()
			}

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if v.handleKey(ev) {
					cancel()
					return nil
				}
			case *tcell.EventResize:
				v.screen.Sync()
				v.draw()
			}
		}
	}
}

// handleKey reports true when the user asked to quit.
func (v *View) handleKey(ev *tcell.EventKey) bool {
	switch {
	case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
		return true
	case ev.Rune() == 'q':
		return true
	case ev.Rune() == 'p':
		v.paused = !v.paused
	case ev.Rune() == 's':
		v.step = true
	}
	return false
}

func (v *View) draw() {
	v.screen.Clear()

	width, height := v.screen.Size()
	plotHeight := height - 1
	if width < 2 || plotHeight < 1 {
		v.screen.Show()
		return
	}

	positive := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	negative := tcell.StyleDefault.Foreground(tcell.ColorFuchsia)

	for _, ev := range v.ring.Snapshot() {
		if ev.Kind != types.KindCD {
			continue
		}
		cx := int(ev.X) * width / int(v.sensor.Width)
		cy := int(ev.Y) * plotHeight / int(v.sensor.Height)
		if cx >= width || cy >= plotHeight {
			continue
		}
		style := positive
		if !ev.Polarity {
			style = negative
		}
		v.screen.SetContent(cx, cy, '▪', nil, style)
	}

	v.drawStatus(width, height-1)
	v.screen.Show()
}

func (v *View) drawStatus(width, row int) {
	snap := v.stats.Snapshot()

	now := time.Now()
	if elapsed := now.Sub(v.lastSample); elapsed >= time.Second/4 {
		v.rate = float64(snap.EventsDecoded-v.lastEvents) / elapsed.Seconds()
		v.lastEvents = snap.EventsDecoded
		v.lastSample = now
	}

	pausedFlag := ""
	if v.paused {
		pausedFlag = "  [PAUSED]"
	}

	status := fmt.Sprintf(" t=%s  %.0f ev/s  malformed=%d%s  (q quit, p pause, s step)",
		formatTimestamp(snap.CurrentTime), v.rate, snap.MalformedWords, pausedFlag)

	style := tcell.StyleDefault.Reverse(true)
	for col := 0; col < width; col++ {
		ch := ' '
		if col < len(status) {
			ch = rune(status[col])
		}
		v.screen.SetContent(col, row, ch, nil, style)
	}
}

// formatTimestamp renders a microsecond timestamp as HH:MM:SS.mmm.
func formatTimestamp(us uint64) string {
	ms := us / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d",
		ms/3600000%24, ms/60000%60, ms/1000%60, ms%1000)
}

package validate

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/evtscope/evtscope/internal/decoder"
	"github.com/evtscope/evtscope/internal/raw"
	"github.com/evtscope/evtscope/internal/source"
	"github.com/evtscope/evtscope/pkg/types"
)

// Result summarizes one headless conformance decode.
type Result struct {
	Hash           uint64
	CDEvents       uint64
	MalformedWords uint64
	Format         types.Format
}

// HashFile decodes path to EOF without pacing or a display buffer and
// returns the streaming hash over its CD event sequence. format may be
// FormatUnknown to sniff it from the RAW header; timeShift rebases the
// first CD event to t = 0 like the live pipeline does.
func HashFile(ctx context.Context, srcCfg source.Config, path string, format types.Format, timeShift bool) (Result, error) {
	rc, err := source.Open(ctx, srcCfg, path)
	if err != nil {
		return Result{}, err
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, 32*1024)
	// An explicitly supplied format wins over the header; the header
	// lines are consumed either way so the payload starts cleanly.
	header, err := raw.ParseHeader(br)
	if format == types.FormatUnknown {
		if err != nil {
			return Result{}, fmt.Errorf("cannot determine format of %s: %w", path, err)
		}
		format = header.Format
	}

	dec, err := decoder.New(format)
	if err != nil {
		return Result{}, err
	}

	h := NewStreamHash()
	res := Result{Format: format}

	var shiftOrigin uint64
	shiftSet := false

	buf := make([]byte, 32*1024)
	events := make([]types.Event, 0, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		n, readErr := br.Read(buf)
		if n > 0 {
			events = dec.Decode(buf[:n], events[:0])
			for _, ev := range events {
				if ev.Kind != types.KindCD {
					continue
				}
				if timeShift {
					if !shiftSet {
						shiftOrigin = ev.T
						shiftSet = true
					}
					ev.T -= shiftOrigin
				}
				h.WriteEvent(ev)
				res.CDEvents++
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return res, fmt.Errorf("%w: %v", source.ErrSourceFailure, readErr)
		}
	}

	res.Hash = h.Sum64()
	res.MalformedWords = dec.MalformedWords()
	return res, nil
}

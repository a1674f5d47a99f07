package raw

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/evtscope/evtscope/pkg/types"
)

// Header errors.
var (
	ErrHeaderRead    = errors.New("failed to read raw header")
	ErrFormatMissing = errors.New("event format not found in raw header")
)

// Header holds the parsed ASCII header that precedes the binary payload
// of a Prophesee-style RAW file. Header lines start with '%' and carry
// "key value" pairs, e.g.:
//
//	% evt 3.0
//	% format EVT3;height=720;width=1280
//	% geometry 1280x720
type Header struct {
	Fields   map[string]string
	Format   types.Format
	Geometry types.Geometry
}

// ParseHeader consumes the '%'-prefixed header lines from r, leaving
// the reader positioned at the first payload byte. Files without any
// header lines yield ErrFormatMissing; callers may still decode them by
// supplying the format explicitly.
func ParseHeader(r *bufio.Reader) (*Header, error) {
	h := &Header{Fields: make(map[string]string)}
	var evtValue, formatValue string

	for {
		peek, err := r.Peek(1)
		if err != nil {
			// Empty file or pure-payload stream: stop peeking and let
			// format resolution below decide.
			break
		}
		if peek[0] != '%' {
			break
		}

		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrHeaderRead, err)
		}

		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "%")), " ")
		if ok {
			value = strings.TrimSpace(value)
			h.Fields[key] = value

			switch key {
			case "evt":
				evtValue = value
			case "format":
				formatValue = value
			case "geometry":
				h.Geometry = parseGeometry(value)
			}
		}

		// A header line without a trailing newline ends the file.
		if err != nil {
			break
		}
	}

	// "format" lines take precedence over legacy "evt" lines and may
	// carry geometry attributes: "EVT3;height=720;width=1280".
	formatStr := evtValue
	if formatValue != "" {
		name, attrs, _ := strings.Cut(formatValue, ";")
		formatStr = name
		h.mergeFormatAttrs(attrs)
	}
	if formatStr == "" {
		return h, ErrFormatMissing
	}

	format, err := types.ParseFormat(formatStr)
	if err != nil {
		return h, err
	}
	h.Format = format
	return h, nil
}

func (h *Header) mergeFormatAttrs(attrs string) {
	for _, attr := range strings.Split(attrs, ";") {
		key, value, ok := strings.Cut(attr, "=")
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			continue
		}
		switch key {
		case "width":
			h.Geometry.Width = uint16(n)
		case "height":
			h.Geometry.Height = uint16(n)
		}
	}
}

// parseGeometry parses "WIDTHxHEIGHT". Malformed values leave the
// geometry zero; geometry is advisory and the decoders do not depend on it.
func parseGeometry(s string) types.Geometry {
	wStr, hStr, ok := strings.Cut(s, "x")
	if !ok {
		return types.Geometry{}
	}
	w, errW := strconv.ParseUint(strings.TrimSpace(wStr), 10, 16)
	h, errH := strconv.ParseUint(strings.TrimSpace(hStr), 10, 16)
	if errW != nil || errH != nil {
		return types.Geometry{}
	}
	return types.Geometry{Width: uint16(w), Height: uint16(h)}
}

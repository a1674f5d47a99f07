package types

import (
	"errors"
	"fmt"
	"strings"
)

// Format identifies a sensor wire format.
type Format uint8

const (
	// FormatUnknown means the format has not been set or sniffed yet.
	FormatUnknown Format = iota

	// FormatEVT2 uses 32-bit words with a full (x, y) per CD word.
	FormatEVT2

	// FormatEVT21 uses 64-bit words with a 32-pixel validity mask per CD word.
	FormatEVT21

	// FormatEVT3 uses 16-bit words with separate address/time/vector words.
	FormatEVT3
)

// ErrUnknownFormat is returned when a format string cannot be mapped to
// a supported wire format.
var ErrUnknownFormat = errors.New("unknown event format")

// WordSize returns the wire word size in bytes for the format.
func (f Format) WordSize() int {
	switch f {
	case FormatEVT2:
		return 4
	case FormatEVT21:
		return 8
	case FormatEVT3:
		return 2
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case FormatEVT2:
		return "EVT2"
	case FormatEVT21:
		return "EVT2.1"
	case FormatEVT3:
		return "EVT3"
	default:
		return "unknown"
	}
}

// ParseFormat maps the format strings found in RAW headers and on the
// command line to a Format. Both the "evt" header values ("2.0", "3.0")
// and the "format" header values ("EVT2", "EVT3") are accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "2.0", "EVT2":
		return FormatEVT2, nil
	case "2.1", "EVT21", "EVT2.1":
		return FormatEVT21, nil
	case "3.0", "EVT3":
		return FormatEVT3, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Geometry is the sensor pixel array size.
type Geometry struct {
	Width  uint16 `json:"width" yaml:"width"`
	Height uint16 `json:"height" yaml:"height"`
}

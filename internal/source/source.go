// Package source opens the byte sources a decode session reads from:
// local files (including device nodes), S3 objects, and snappy-framed
// compressed recordings. Every source is consumed strictly
// sequentially; there is no seeking.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
)

// ErrSourceFailure wraps faults of the underlying byte source. Normal
// EOF is not a failure; it ends the session cleanly.
var ErrSourceFailure = errors.New("input source failure")

// Config holds source-layer configuration.
type Config struct {
	// S3 holds credentials-free client settings for s3:// inputs.
	S3 S3Config `json:"s3" yaml:"s3"`
}

// Open returns a sequential reader for path. Paths with an s3:// scheme
// stream the object body; everything else is opened as a local file. A
// ".sz" suffix selects transparent snappy-framed decompression of
// either kind.
func Open(ctx context.Context, cfg Config, path string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	var err error

	if strings.HasPrefix(path, "s3://") {
		rc, err = openS3(ctx, cfg.S3, path)
	} else {
		rc, err = openFile(path)
	}
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, ".sz") {
		rc = &snappyReader{r: snappy.NewReader(rc), underlying: rc}
	}
	return rc, nil
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceFailure, err)
	}
	return f, nil
}

// snappyReader keeps the compressed reader alive so Close releases the
// underlying file or object body.
type snappyReader struct {
	r          *snappy.Reader
	underlying io.ReadCloser
}

func (s *snappyReader) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *snappyReader) Close() error {
	return s.underlying.Close()
}

package core

// streaming.go wraps uploaded files before CSV parsing:
//
//   - A UTF-8 BOM written by Windows programs is dropped
//   - Invalid UTF-8 sequences become U+FFFD instead of failing the parse
//   - Bytes are counted so oversized uploads can be rejected
//
// Use WrapForStreaming to apply all transforms in the correct order.

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrFileTooLarge is returned once more than the allowed number of bytes
// has been read.
var ErrFileTooLarge = errors.New("file too large")

// CountingReader tracks bytes read and fails once a limit is exceeded.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64 // 0 means unlimited
}

// NewCountingReader creates a counting reader. limit <= 0 disables the cap.
func NewCountingReader(r io.Reader, limit int64) *CountingReader {
	return &CountingReader{reader: r, Limit: limit}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Limit > 0 && r.BytesRead > r.Limit {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, r.Limit)
	}
	return n, err
}

// WrapForStreaming wraps a reader with size accounting, BOM stripping and
// UTF-8 sanitization.
//
// Counting sits closest to the source so the limit applies to raw upload
// bytes, not to the decoded text.
func WrapForStreaming(r io.Reader, limit int64) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r, limit)
	decoded := transform.NewReader(counter, unicode.UTF8BOM.NewDecoder())
	return decoded, counter
}

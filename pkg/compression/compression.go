// Package compression provides transparent decompression for hypergraph
// input files.
package compression

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Type represents the compression algorithm used.
type Type uint8

// Supported algorithms.
const (
	TypeNone Type = iota
	TypeGzip
	TypeZstd
)

// DetectByPath infers the compression type from a file name.
func DetectByPath(path string) Type {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return TypeGzip
	case strings.HasSuffix(path, ".zst"), strings.HasSuffix(path, ".zstd"):
		return TypeZstd
	default:
		return TypeNone
	}
}

// zstdReadCloser adapts a zstd decoder to io.ReadCloser.
type zstdReadCloser struct {
	*zstd.Decoder
	underlying io.Closer
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	if z.underlying != nil {
		return z.underlying.Close()
	}
	return nil
}

// NewReader wraps r with the decompressor for the given type. For zstd and
// uncompressed input the returned reader closes r on Close when r is itself
// a closer; the gzip reader's Close leaves r open.
func NewReader(r io.Reader, t Type) (io.ReadCloser, error) {
	closer, _ := r.(io.Closer)

	switch t {
	case TypeNone:
		if rc, ok := r.(io.ReadCloser); ok {
			return rc, nil
		}
		return io.NopCloser(r), nil
	case TypeGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return gz, nil
	case TypeZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return &zstdReadCloser{Decoder: dec, underlying: closer}, nil
	default:
		return nil, fmt.Errorf("unknown compression type: %d", t)
	}
}

// NewReaderForPath wraps r with the decompressor inferred from path.
func NewReaderForPath(r io.Reader, path string) (io.ReadCloser, error) {
	return NewReader(r, DetectByPath(path))
}

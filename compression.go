package sqlar

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Compression selects how payloads are stored.
type Compression uint8

const (
	// CompressionDeflate stores payloads zlib-compressed whenever the
	// compressed form is smaller than the original.
	CompressionDeflate Compression = iota

	// CompressionStored stores payloads verbatim.
	CompressionStored
)

// String returns the human-readable name of the compression mode.
func (c Compression) String() string {
	switch c {
	case CompressionDeflate:
		return "deflate"
	case CompressionStored:
		return "stored"
	default:
		return "unknown"
	}
}

// DefaultLevel selects the codec's default compression level.
const DefaultLevel = zlib.DefaultCompression

// deflate compresses data at the given zlib level and returns the smaller
// of the compressed and original forms, mirroring sqlar_compress: tiny or
// incompressible payloads are stored as-is rather than expanded.
func deflate(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("create zlib writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if buf.Len() < len(data) {
		return buf.Bytes(), nil
	}
	return data, nil
}

// inflate decompresses a zlib stream. Its failure on non-zlib input is what
// lets the read path detect raw storage.
func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// decode recovers a payload from its stored form. The table carries no
// is-compressed flag: try zlib first and accept the result when the
// decompressed length matches the recorded size, otherwise fall back to
// treating the blob as raw bytes. This order is an on-disk compatibility
// contract with archives produced by prior-generation writers.
func decode(data []byte, sz int64) ([]byte, bool) {
	if out, err := inflate(data); err == nil && int64(len(out)) == sz {
		return out, true
	}
	if int64(len(data)) == sz {
		return data, true
	}
	return nil, false
}

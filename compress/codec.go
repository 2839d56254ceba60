package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/xdf/errs"
	"github.com/arloliu/xdf/format"
)

// Codec wraps a streaming compression format for whole container files.
//
// XDF recordings are written as a single stream of chunks, so the codecs
// operate on readers and writers rather than on in-memory payloads. Every
// implementation must be safe for concurrent use; per-stream state lives in
// the returned reader or writer.
type Codec interface {
	// Type returns the compression type implemented by the codec.
	Type() format.CompressionType

	// Extension returns the conventional file extension, including the dot.
	// The no-op codec returns ".xdf".
	Extension() string

	// NewReader wraps r with a decompressing reader.
	//
	// Close must be called to release pooled resources. It does not close r.
	NewReader(r io.Reader) (io.ReadCloser, error)

	// NewWriter wraps w with a compressing writer.
	//
	// Close flushes the final frame. It does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
}

// CompressionStats reports the outcome of a compression pass.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the size of input data before compression
	OriginalSize int64

	// CompressedSize is the size of data after compression
	CompressedSize int64

	// CompressionTimeNs is the time taken to compress the data
	CompressionTimeNs int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage.
func (s CompressionStats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCodec(),
	format.CompressionZstd: NewZstdCodec(),
	format.CompressionS2:   NewS2Codec(),
	format.CompressionLZ4:  NewLZ4Codec(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//
// Returns:
//   - Codec: Shared codec instance for the specified type
//   - error: errs.ErrUnsupportedCompression for unknown types
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}

// Compress compresses data in memory with the given codec.
func Compress(codec Codec, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := codec.NewWriter(&buf)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

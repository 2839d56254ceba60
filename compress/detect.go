package compress

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/arloliu/xdf/format"
)

const sniffSize = 10

// ByExtension maps a file name to the compression its extension implies.
//
// ".xdfz", ".zst" and ".zstd" map to Zstd, ".s2" and ".sz" to S2, ".lz4" to
// LZ4. Any other name, ".xdf" included, maps to CompressionNone.
func ByExtension(path string) format.CompressionType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xdfz", ".zst", ".zstd":
		return format.CompressionZstd
	case ".s2", ".sz":
		return format.CompressionS2
	case ".lz4":
		return format.CompressionLZ4
	default:
		return format.CompressionNone
	}
}

// Sniff inspects the first bytes of br without consuming them.
//
// Streams that match no known magic are reported as CompressionNone, so a
// plain container, and garbage alike, are left for the container decoder to
// judge.
//
// Returns:
//   - format.CompressionType: Detected compression
//   - error: Read error other than a short stream
func Sniff(br *bufio.Reader) (format.CompressionType, error) {
	head, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return format.CompressionNone, err
	}

	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return format.CompressionZstd, nil
	case bytes.HasPrefix(head, s2Magic), bytes.HasPrefix(head, snappyMagic):
		return format.CompressionS2, nil
	case bytes.HasPrefix(head, lz4Magic):
		return format.CompressionLZ4, nil
	default:
		return format.CompressionNone, nil
	}
}

// NewDetectingReader sniffs r and wraps it with the matching decompressor.
//
// Parameters:
//   - r: Source stream, plain or compressed
//
// Returns:
//   - io.ReadCloser: Plain container stream; Close releases codec resources only
//   - format.CompressionType: Detected compression
//   - error: Sniffing or codec setup error
func NewDetectingReader(r io.Reader) (io.ReadCloser, format.CompressionType, error) {
	br, ok := r.(*bufio.Reader)
	if !ok || br.Size() < sniffSize {
		br = bufio.NewReader(r)
	}

	ct, err := Sniff(br)
	if err != nil {
		return nil, ct, err
	}

	codec, err := GetCodec(ct)
	if err != nil {
		return nil, ct, err
	}

	rc, err := codec.NewReader(br)
	if err != nil {
		return nil, ct, err
	}

	return rc, ct, nil
}

package compress

import (
	"io"

	"github.com/arloliu/xdf/format"
)

// NoOpCodec passes plain containers through unchanged.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

// NewNoOpCodec creates a new pass-through codec.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

func (NoOpCodec) Type() format.CompressionType { return format.CompressionNone }

func (NoOpCodec) Extension() string { return ".xdf" }

// NewReader returns r unchanged. Close is a no-op.
func (NoOpCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// NewWriter returns w unchanged. Close is a no-op.
func (NoOpCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

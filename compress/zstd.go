package compress

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/xdf/format"
)

// zstdMagic is the little-endian frame magic 0xFD2FB528.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Decoders are designed to run without allocations after warmup, so both
// sides are pooled and re-targeted with Reset.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// ZstdCodec reads and writes Zstandard compressed containers.
//
// This is the codec behind the ".xdfz" extension. It gives the best ratio
// of the built-in codecs on the float32 sample blocks typical for EEG data.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

// NewZstdCodec creates a new Zstd codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}

func (ZstdCodec) Type() format.CompressionType { return format.CompressionZstd }

func (ZstdCodec) Extension() string { return ".xdfz" }

// NewReader returns a reader backed by a pooled decoder.
func (ZstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	if err := decoder.Reset(r); err != nil {
		zstdDecoderPool.Put(decoder)
		return nil, fmt.Errorf("zstd reader: %w", err)
	}

	return &zstdReader{decoder: decoder}, nil
}

// NewWriter returns a writer backed by a pooled encoder.
func (ZstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	encoder.Reset(w)

	return &zstdWriter{encoder: encoder}, nil
}

type zstdReader struct {
	decoder *zstd.Decoder
}

func (z *zstdReader) Read(p []byte) (int, error) {
	if z.decoder == nil {
		return 0, io.ErrClosedPipe
	}

	return z.decoder.Read(p)
}

func (z *zstdReader) Close() error {
	if z.decoder == nil {
		return nil
	}

	// Detach the source so the pooled decoder does not retain it.
	_ = z.decoder.Reset(nil)
	zstdDecoderPool.Put(z.decoder)
	z.decoder = nil

	return nil
}

type zstdWriter struct {
	encoder *zstd.Encoder
}

func (z *zstdWriter) Write(p []byte) (int, error) {
	if z.encoder == nil {
		return 0, io.ErrClosedPipe
	}

	return z.encoder.Write(p)
}

func (z *zstdWriter) Close() error {
	if z.encoder == nil {
		return nil
	}

	err := z.encoder.Close()
	z.encoder.Reset(nil)
	zstdEncoderPool.Put(z.encoder)
	z.encoder = nil

	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}

	return nil
}

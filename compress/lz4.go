package compress

import (
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/xdf/format"
)

// lz4Magic is the little-endian LZ4 frame magic 0x184D2204.
var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

// lz4.Reader keeps its block buffers across Reset calls.
var lz4ReaderPool = sync.Pool{
	New: func() any {
		return lz4.NewReader(nil)
	},
}

var lz4WriterPool = sync.Pool{
	New: func() any {
		return lz4.NewWriter(nil)
	},
}

// LZ4Codec reads and writes LZ4 frame streams, as produced by the lz4 command line tool.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// NewLZ4Codec creates a new LZ4 codec.
//
// Returns:
//   - LZ4Codec: New LZ4 codec instance
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

func (LZ4Codec) Type() format.CompressionType { return format.CompressionLZ4 }

func (LZ4Codec) Extension() string { return ".lz4" }

func (LZ4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	reader := lz4ReaderPool.Get().(*lz4.Reader)
	reader.Reset(r)

	return &lz4Reader{reader: reader}, nil
}

func (LZ4Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	writer := lz4WriterPool.Get().(*lz4.Writer)
	writer.Reset(w)

	return &lz4Writer{writer: writer}, nil
}

type lz4Reader struct {
	reader *lz4.Reader
}

func (l *lz4Reader) Read(p []byte) (int, error) {
	if l.reader == nil {
		return 0, io.ErrClosedPipe
	}

	return l.reader.Read(p)
}

func (l *lz4Reader) Close() error {
	if l.reader == nil {
		return nil
	}

	l.reader.Reset(nil)
	lz4ReaderPool.Put(l.reader)
	l.reader = nil

	return nil
}

type lz4Writer struct {
	writer *lz4.Writer
}

func (l *lz4Writer) Write(p []byte) (int, error) {
	if l.writer == nil {
		return 0, io.ErrClosedPipe
	}

	return l.writer.Write(p)
}

func (l *lz4Writer) Close() error {
	if l.writer == nil {
		return nil
	}

	err := l.writer.Close()
	l.writer.Reset(nil)
	lz4WriterPool.Put(l.writer)
	l.writer = nil

	return err
}

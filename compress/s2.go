package compress

import (
	"io"
	"sync"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/xdf/format"
)

// s2Magic is the stream identifier chunk written at the start of every S2 stream.
var s2Magic = []byte("\xff\x06\x00\x00S2sTwO")

// snappyMagic marks a Snappy framed stream, which the S2 reader also accepts.
var snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")

var s2ReaderPool = sync.Pool{
	New: func() any {
		return s2.NewReader(nil)
	},
}

// S2Codec reads and writes S2 framed streams.
type S2Codec struct{}

var _ Codec = S2Codec{}

// NewS2Codec creates a new S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

func (S2Codec) Type() format.CompressionType { return format.CompressionS2 }

func (S2Codec) Extension() string { return ".s2" }

func (S2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	reader := s2ReaderPool.Get().(*s2.Reader)
	reader.Reset(r)

	return &s2Reader{reader: reader}, nil
}

func (S2Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return s2.NewWriter(w, s2.WriterConcurrency(1)), nil
}

type s2Reader struct {
	reader *s2.Reader
}

func (s *s2Reader) Read(p []byte) (int, error) {
	if s.reader == nil {
		return 0, io.ErrClosedPipe
	}

	return s.reader.Read(p)
}

func (s *s2Reader) Close() error {
	if s.reader == nil {
		return nil
	}

	s.reader.Reset(nil)
	s2ReaderPool.Put(s.reader)
	s.reader = nil

	return nil
}

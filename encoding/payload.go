package encoding

import (
	"fmt"

	"github.com/arloliu/xdf/endian"
	"github.com/arloliu/xdf/errs"
)

// PayloadReader is a cursor over one chunk payload.
//
// The container declares a chunk's length once, in its prefix; the fields
// inside are not self-delimiting. PayloadReader keeps the consumed byte count
// against that declared length so that every read that would cross the chunk
// boundary fails with errs.ErrTruncated instead of bleeding into the next chunk.
//
// Note: PayloadReader is NOT thread-safe.
type PayloadReader struct {
	data   []byte
	offset int
	engine endian.EndianEngine
}

// NewPayloadReader creates a cursor over data, which must hold exactly the
// payload (the chunk length minus the tag).
func NewPayloadReader(data []byte) *PayloadReader {
	return &PayloadReader{
		data:   data,
		engine: endian.GetLittleEndianEngine(),
	}
}

// Reset points the reader at a new payload.
func (p *PayloadReader) Reset(data []byte) {
	p.data = data
	p.offset = 0
}

// Offset returns the number of bytes consumed so far.
func (p *PayloadReader) Offset() int {
	return p.offset
}

// Remaining returns the number of unread payload bytes.
func (p *PayloadReader) Remaining() int {
	return len(p.data) - p.offset
}

// Next consumes n bytes and returns them without copying.
//
// The returned slice aliases the payload buffer and is only valid until the
// buffer is reused.
func (p *PayloadReader) Next(n int) ([]byte, error) {
	if n < 0 || p.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at payload offset %d, have %d",
			errs.ErrTruncated, n, p.offset, p.Remaining())
	}

	b := p.data[p.offset : p.offset+n]
	p.offset += n

	return b, nil
}

// Rest consumes and returns every unread byte.
func (p *PayloadReader) Rest() []byte {
	b := p.data[p.offset:]
	p.offset = len(p.data)

	return b
}

// Uint8 consumes one byte.
func (p *PayloadReader) Uint8() (uint8, error) {
	b, err := p.Next(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// Uint32 consumes a little-endian uint32.
func (p *PayloadReader) Uint32() (uint32, error) {
	b, err := p.Next(4)
	if err != nil {
		return 0, err
	}

	return p.engine.Uint32(b), nil
}

// Float64 consumes a little-endian IEEE-754 double.
func (p *PayloadReader) Float64() (float64, error) {
	b, err := p.Next(8)
	if err != nil {
		return 0, err
	}

	return endian.Float64(p.engine, b), nil
}

// Length consumes a variable-length integer.
func (p *PayloadReader) Length() (uint64, error) {
	v, n, err := DecodeLength(p.data[p.offset:], p.engine)
	if err != nil {
		return 0, fmt.Errorf("payload offset %d: %w", p.offset, err)
	}
	p.offset += n

	return v, nil
}

// Engine returns the byte order used for fixed-width fields.
func (p *PayloadReader) Engine() endian.EndianEngine {
	return p.engine
}

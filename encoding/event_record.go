package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/xdf/endian"
	"github.com/arloliu/xdf/errs"
	"github.com/arloliu/xdf/internal/pool"
)

// EventRecordEncoder encodes string sample records with fixed-width fields.
//
// Each record is encoded as:
//   - 1 byte: timestamp presence (always 8)
//   - 8 bytes: little-endian float64 timestamp
//   - 1 byte: length width indicator (always 4)
//   - 4 bytes: little-endian uint32 text length
//   - N bytes: text
//
// The fixed widths make the encoded size a simple function of the text
// lengths, which the event writer needs to emit the chunk length up front.
//
// Note: EventRecordEncoder is NOT thread-safe.
type EventRecordEncoder struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	count  int
}

// EventRecordSize returns the encoded size of one record with the given text.
func EventRecordSize(text string) int {
	return 1 + 8 + 1 + 4 + len(text)
}

// NewEventRecordEncoder creates an encoder backed by a pooled buffer.
// Call Reset to return the buffer once the bytes have been consumed.
func NewEventRecordEncoder() *EventRecordEncoder {
	return &EventRecordEncoder{
		buf:    pool.GetWriteBuffer(),
		engine: endian.GetLittleEndianEngine(),
	}
}

// Write encodes one record.
//
// Returns errs.ErrEventTextTooLong if the text does not fit a uint32 length.
func (e *EventRecordEncoder) Write(timestamp float64, text string) error {
	if uint64(len(text)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes", errs.ErrEventTextTooLong, len(text))
	}

	e.buf.Grow(EventRecordSize(text))

	b := e.buf.B
	b = append(b, 8)
	b = endian.AppendFloat64(e.engine, b, timestamp)
	b = AppendLength4(b, uint32(len(text))) //nolint:gosec
	b = append(b, text...)
	e.buf.B = b
	e.count++

	return nil
}

// Bytes returns the encoded records. The slice aliases the internal buffer.
func (e *EventRecordEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of records written.
func (e *EventRecordEncoder) Len() int {
	return e.count
}

// Size returns the encoded size in bytes.
func (e *EventRecordEncoder) Size() int {
	return e.buf.Len()
}

// Reset returns the buffer to the pool. The encoder must not be used afterwards.
func (e *EventRecordEncoder) Reset() {
	if e.buf != nil {
		pool.PutWriteBuffer(e.buf)
		e.buf = nil
	}
	e.count = 0
}

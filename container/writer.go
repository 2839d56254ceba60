package container

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/arloliu/xdf/encoding"
	"github.com/arloliu/xdf/endian"
	"github.com/arloliu/xdf/format"
	"github.com/arloliu/xdf/internal/pool"
)

// WriteEvents appends a string stream to an existing container body.
//
// Two chunks are written to w, both with 4-byte length fields:
//   - StreamHeader (tag 2): stream id, then header verbatim
//   - Samples (tag 3): stream id, count as width 4 + uint32, then each event
//     as presence 8, float64 timestamp, width 4, uint32 length and the text
//
// The Samples chunk length is 2+4+1+4 plus 1+8+1+4+len(text) per event. The
// width byte before each text length is part of every string sample, so the
// chunk reads back through the regular samples path; a layout without it
// (1+8+4+len) would not decode.
// Events are written in the given order; Event.StreamIndex is ignored.
//
// Parameters:
//   - w: Destination, positioned at the end of a container
//   - streamID: Container id of the new stream; must not collide with existing ids
//   - header: Stream header XML, typically from NewMarkerHeader or StreamInfo.RawHeader
//   - events: Events to write
//
// Returns:
//   - int64: Number of bytes written
//   - error: errs.ErrEventTextTooLong, a chunk length overflow, or a write error
func WriteEvents(w io.Writer, streamID uint32, header string, events []Event) (int64, error) {
	engine := endian.GetLittleEndianEngine()

	records := encoding.NewEventRecordEncoder()
	defer records.Reset()

	for i, e := range events {
		if err := records.Write(e.Timestamp, e.Text); err != nil {
			return 0, fmt.Errorf("event %d: %w", i, err)
		}
	}

	headerLen := uint64(2 + 4 + len(header))
	samplesLen := uint64(2+4+1+4) + uint64(records.Size())
	if headerLen > math.MaxUint32 || samplesLen > math.MaxUint32 {
		return 0, fmt.Errorf("event stream does not fit a 4-byte chunk length")
	}
	if uint64(len(events)) > math.MaxUint32 {
		return 0, fmt.Errorf("too many events: %d", len(events))
	}

	out := pool.GetWriteBuffer()
	defer pool.PutWriteBuffer(out)
	out.Grow(int(headerLen+samplesLen) + 10)

	b := out.B
	b = encoding.AppendLength4(b, uint32(headerLen))
	b = engine.AppendUint16(b, uint16(format.TagStreamHeader))
	b = engine.AppendUint32(b, streamID)
	b = append(b, header...)

	b = encoding.AppendLength4(b, uint32(samplesLen))
	b = engine.AppendUint16(b, uint16(format.TagSamples))
	b = engine.AppendUint32(b, streamID)
	b = encoding.AppendLength4(b, uint32(len(events))) //nolint:gosec
	b = append(b, records.Bytes()...)
	out.B = b

	return out.WriteTo(w)
}

// NewMarkerHeader builds the header XML of an irregular string stream
// suitable for WriteEvents.
func NewMarkerHeader(name, streamType string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><info><name>`)
	_ = xml.EscapeText(&b, []byte(name))
	b.WriteString(`</name><type>`)
	_ = xml.EscapeText(&b, []byte(streamType))
	b.WriteString(`</type><channel_count>1</channel_count><nominal_srate>0</nominal_srate>`)
	b.WriteString(`<channel_format>string</channel_format></info>`)

	return b.String()
}

// NextStreamID returns an id one greater than the largest stream id in f.
func (f *File) NextStreamID() uint32 {
	var next uint32 = 1
	for _, s := range f.Streams {
		if s.ID >= next {
			next = s.ID + 1
		}
	}

	return next
}

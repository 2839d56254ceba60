// Package xdftest builds synthetic XDF containers for tests.
package xdftest

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/xdf/encoding"
	"github.com/arloliu/xdf/endian"
	"github.com/arloliu/xdf/format"
)

var engine = endian.GetLittleEndianEngine()

// Builder appends chunks to an in-memory container.
type Builder struct {
	buf []byte
}

// New starts a container with the XDF magic.
func New() *Builder {
	return &Builder{buf: []byte("XDF:")}
}

// NewRaw starts an empty buffer without magic.
func NewRaw() *Builder {
	return &Builder{}
}

// Bytes returns the container built so far.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Raw appends bytes verbatim.
func (b *Builder) Raw(p ...byte) *Builder {
	b.buf = append(b.buf, p...)
	return b
}

// Chunk appends a chunk using the smallest length width.
func (b *Builder) Chunk(tag format.Tag, payload []byte) *Builder {
	b.buf = encoding.AppendLength(b.buf, uint64(2+len(payload)))
	b.buf = engine.AppendUint16(b.buf, uint16(tag))
	b.buf = append(b.buf, payload...)

	return b
}

// ChunkWidth appends a chunk with a fixed length width.
func (b *Builder) ChunkWidth(width int, tag format.Tag, payload []byte) *Builder {
	var err error
	b.buf, err = encoding.AppendLengthWidth(b.buf, uint64(2+len(payload)), width)
	if err != nil {
		panic(err)
	}
	b.buf = engine.AppendUint16(b.buf, uint16(tag))
	b.buf = append(b.buf, payload...)

	return b
}

// FileHeader appends a FileHeader chunk.
func (b *Builder) FileHeader(xml string) *Builder {
	return b.Chunk(format.TagFileHeader, []byte(xml))
}

// StreamHeader appends a StreamHeader chunk.
func (b *Builder) StreamHeader(id uint32, xml string) *Builder {
	return b.Chunk(format.TagStreamHeader, append(engine.AppendUint32(nil, id), xml...))
}

// Samples appends a Samples chunk holding the given records.
func (b *Builder) Samples(id uint32, records ...[]byte) *Builder {
	payload := engine.AppendUint32(nil, id)
	payload = encoding.AppendLength(payload, uint64(len(records)))
	for _, r := range records {
		payload = append(payload, r...)
	}

	return b.Chunk(format.TagSamples, payload)
}

// ClockOffset appends a ClockOffset chunk.
func (b *Builder) ClockOffset(id uint32, collectionTime, offset float64) *Builder {
	payload := engine.AppendUint32(nil, id)
	payload = endian.AppendFloat64(engine, payload, collectionTime)
	payload = endian.AppendFloat64(engine, payload, offset)

	return b.Chunk(format.TagClockOffset, payload)
}

// StreamFooter appends a StreamFooter chunk.
func (b *Builder) StreamFooter(id uint32, xml string) *Builder {
	return b.Chunk(format.TagStreamFooter, append(engine.AppendUint32(nil, id), xml...))
}

// Boundary appends a Boundary chunk with a 16-byte opaque payload.
func (b *Builder) Boundary() *Builder {
	return b.Chunk(format.TagBoundary, make([]byte, 16))
}

// TS returns an explicit timestamp prefix.
func TS(ts float64) []byte {
	return endian.AppendFloat64(engine, []byte{8}, ts)
}

// NoTS returns the prefix of a record whose timestamp is derived.
func NoTS() []byte {
	return []byte{0}
}

// Record concatenates a timestamp prefix and encoded values.
func Record(prefix []byte, values ...[]byte) []byte {
	out := append([]byte(nil), prefix...)
	for _, v := range values {
		out = append(out, v...)
	}

	return out
}

// F32 encodes float32 values.
func F32(vals ...float32) []byte {
	var out []byte
	for _, v := range vals {
		out = endian.AppendFloat32(engine, out, v)
	}

	return out
}

// F64 encodes float64 values.
func F64(vals ...float64) []byte {
	var out []byte
	for _, v := range vals {
		out = endian.AppendFloat64(engine, out, v)
	}

	return out
}

// I8 encodes int8 values.
func I8(vals ...int8) []byte {
	out := make([]byte, len(vals))
	for i, v := range vals {
		out[i] = byte(v)
	}

	return out
}

// I16 encodes int16 values.
func I16(vals ...int16) []byte {
	var out []byte
	for _, v := range vals {
		out = engine.AppendUint16(out, uint16(v))
	}

	return out
}

// I32 encodes int32 values.
func I32(vals ...int32) []byte {
	var out []byte
	for _, v := range vals {
		out = engine.AppendUint32(out, uint32(v))
	}

	return out
}

// I64 encodes int64 values.
func I64(vals ...int64) []byte {
	var out []byte
	for _, v := range vals {
		out = engine.AppendUint64(out, uint64(v))
	}

	return out
}

// Str encodes a string sample value.
func Str(s string) []byte {
	return append(encoding.AppendLength(nil, uint64(len(s))), s...)
}

// StreamHeaderXML renders a minimal stream header.
func StreamHeaderXML(name, streamType string, channels int, srate float64, channelFormat string) string {
	return fmt.Sprintf(`<?xml version="1.0"?><info><name>%s</name><type>%s</type>`+
		`<channel_count>%d</channel_count><nominal_srate>%g</nominal_srate>`+
		`<channel_format>%s</channel_format></info>`,
		name, streamType, channels, srate, channelFormat)
}

// FooterXML renders a stream footer. NaN bounds are omitted.
func FooterXML(first, last float64, count int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><info>`)
	if !math.IsNaN(first) {
		fmt.Fprintf(&b, "<first_timestamp>%g</first_timestamp>", first)
	}
	if !math.IsNaN(last) {
		fmt.Fprintf(&b, "<last_timestamp>%g</last_timestamp>", last)
	}
	fmt.Fprintf(&b, "<sample_count>%d</sample_count></info>", count)

	return b.String()
}

// FileHeaderXML renders a file header with the given version.
func FileHeaderXML(version string) string {
	return `<?xml version="1.0"?><info><version>` + version + `</version></info>`
}

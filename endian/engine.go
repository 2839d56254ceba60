// Package endian provides the byte order engine used by the XDF codecs.
//
// Every multi-byte field of an XDF container (lengths, tags, stream ids,
// timestamps and sample values) is little-endian. The engine combines
// binary.ByteOrder and binary.AppendByteOrder so decoders can read fields in
// place and writers can append them without temporary buffers:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint32(buf, streamID)
//	buf = endian.AppendFloat64(engine, buf, timestamp)
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use. Engines are
// immutable and stateless.
package endian

import (
	"encoding/binary"
	"math"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// It is satisfied by binary.LittleEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine, the only byte order
// an XDF container uses.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// Float32 decodes a 4-byte IEEE-754 single.
func Float32(engine EndianEngine, b []byte) float32 {
	return math.Float32frombits(engine.Uint32(b))
}

// Float64 decodes an 8-byte IEEE-754 double.
func Float64(engine EndianEngine, b []byte) float64 {
	return math.Float64frombits(engine.Uint64(b))
}

// AppendFloat32 appends v as a 4-byte IEEE-754 single.
func AppendFloat32(engine EndianEngine, dst []byte, v float32) []byte {
	return engine.AppendUint32(dst, math.Float32bits(v))
}

// AppendFloat64 appends v as an 8-byte IEEE-754 double.
func AppendFloat64(engine EndianEngine, dst []byte, v float64) []byte {
	return engine.AppendUint64(dst, math.Float64bits(v))
}

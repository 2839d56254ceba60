package encoding

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/xdf/endian"
	"github.com/arloliu/xdf/errs"
)

// Width indicators of a variable-length integer.
const (
	LengthWidth1 = 1 // one unsigned byte follows
	LengthWidth4 = 4 // four little-endian bytes follow
	LengthWidth8 = 8 // eight little-endian bytes follow
)

// ReadLength reads a variable-length integer from r.
//
// Encoding format:
//   - 1 byte: width indicator (1, 4 or 8)
//   - N bytes: unsigned little-endian value of that width
//
// Returns:
//   - uint64: The decoded value
//   - error: io.EOF if r was exhausted before the indicator byte,
//     errs.ErrInvalidLengthIndicator for any other indicator value,
//     errs.ErrTruncated if r ended inside the value
func ReadLength(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:1]); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}

		return 0, err
	}

	width := int(buf[0])
	if !validWidth(width) {
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidLengthIndicator, width)
	}

	if _, err := io.ReadFull(r, buf[:width]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w: need %d length bytes", errs.ErrTruncated, width)
		}

		return 0, err
	}

	return decodeWidth(buf[:width], endian.GetLittleEndianEngine()), nil
}

// DecodeLength decodes a variable-length integer from the start of data.
//
// Returns:
//   - uint64: The decoded value
//   - int: Number of bytes consumed (indicator included)
//   - error: errs.ErrInvalidLengthIndicator or errs.ErrTruncated
func DecodeLength(data []byte, engine endian.EndianEngine) (uint64, int, error) {
	if len(data) < 1 {
		return 0, 0, fmt.Errorf("%w: cannot read length indicator", errs.ErrTruncated)
	}

	width := int(data[0])
	if !validWidth(width) {
		return 0, 0, fmt.Errorf("%w: %d", errs.ErrInvalidLengthIndicator, width)
	}

	if len(data) < 1+width {
		return 0, 0, fmt.Errorf("%w: need %d length bytes, have %d", errs.ErrTruncated, width, len(data)-1)
	}

	return decodeWidth(data[1:1+width], engine), 1 + width, nil
}

// AppendLength appends v using the smallest width that holds it.
func AppendLength(dst []byte, v uint64) []byte {
	engine := endian.GetLittleEndianEngine()

	switch {
	case v <= math.MaxUint8:
		return append(dst, LengthWidth1, byte(v))
	case v <= math.MaxUint32:
		dst = append(dst, LengthWidth4)
		return engine.AppendUint32(dst, uint32(v))
	default:
		dst = append(dst, LengthWidth8)
		return engine.AppendUint64(dst, v)
	}
}

// AppendLength4 appends v with width indicator 4, the width used for every
// length the event writer emits.
func AppendLength4(dst []byte, v uint32) []byte {
	dst = append(dst, LengthWidth4)
	return endian.GetLittleEndianEngine().AppendUint32(dst, v)
}

// AppendLengthWidth appends v with a fixed width indicator.
//
// Returns an error if width is not 1, 4 or 8 or if v does not fit in it.
func AppendLengthWidth(dst []byte, v uint64, width int) ([]byte, error) {
	engine := endian.GetLittleEndianEngine()

	switch width {
	case LengthWidth1:
		if v > math.MaxUint8 {
			return dst, fmt.Errorf("length %d does not fit in %d byte", v, width)
		}

		return append(dst, LengthWidth1, byte(v)), nil
	case LengthWidth4:
		if v > math.MaxUint32 {
			return dst, fmt.Errorf("length %d does not fit in %d bytes", v, width)
		}
		dst = append(dst, LengthWidth4)

		return engine.AppendUint32(dst, uint32(v)), nil
	case LengthWidth8:
		dst = append(dst, LengthWidth8)
		return engine.AppendUint64(dst, v), nil
	default:
		return dst, fmt.Errorf("%w: %d", errs.ErrInvalidLengthIndicator, width)
	}
}

func validWidth(width int) bool {
	return width == LengthWidth1 || width == LengthWidth4 || width == LengthWidth8
}

func decodeWidth(b []byte, engine endian.EndianEngine) uint64 {
	switch len(b) {
	case LengthWidth1:
		return uint64(b[0])
	case LengthWidth4:
		return uint64(engine.Uint32(b))
	default:
		return engine.Uint64(b)
	}
}

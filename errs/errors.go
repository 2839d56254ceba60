// Package errs defines the sentinel errors returned by the xdf packages.
//
// Errors are wrapped with positional context (chunk offset, tag, stream id)
// using fmt.Errorf("%w: ...") and can be matched with errors.Is.
package errs

import "errors"

// Container framing errors. All of them abort a load.
var (
	// ErrInvalidMagic is returned when the first four bytes are not "XDF:".
	ErrInvalidMagic = errors.New("not a valid XDF container")
	// ErrInvalidLengthIndicator is returned when a variable-length integer
	// starts with a width byte other than 1, 4 or 8.
	ErrInvalidLengthIndicator = errors.New("invalid length indicator")
	// ErrInvalidChunkLength is returned when a chunk is shorter than its tag.
	ErrInvalidChunkLength = errors.New("invalid chunk length")
	// ErrChunkTooLarge is returned when a chunk exceeds the configured maximum size.
	ErrChunkTooLarge = errors.New("chunk exceeds maximum size")
	// ErrTruncated is returned when the input ends inside a chunk or a payload
	// field runs past the declared chunk length.
	ErrTruncated = errors.New("truncated container")
)

// Model errors.
var (
	ErrUnknownChannelFormat = errors.New("unknown channel format")
	ErrAlreadySynchronized  = errors.New("clock offsets already applied")
	ErrStreamNotFound       = errors.New("stream not found")
	ErrEventTextTooLong     = errors.New("event text too long")
	ErrInvalidChannelCount  = errors.New("invalid channel count")
)

// Resampling errors. These are per-stream and never abort a load.
var (
	ErrUnsupportedRatio = errors.New("unsupported resampling ratio")
	ErrInvalidQuality   = errors.New("invalid resampling quality parameters")
	ErrInvalidRate      = errors.New("invalid sampling rate")
)

// ErrUnsupportedCompression is returned for unknown container compression types.
var ErrUnsupportedCompression = errors.New("unsupported compression type")

package container

import (
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/arloliu/xdf/encoding"
	"github.com/arloliu/xdf/endian"
	"github.com/arloliu/xdf/errs"
	"github.com/arloliu/xdf/format"
)

// explicitTimestamp is the presence byte announcing an 8-byte timestamp.
const explicitTimestamp = 8

// rowDecoder decodes one record's channel values from b and appends them to rows.
type rowDecoder func(rows [][]float64, b []byte, engine endian.EndianEngine)

// decodable reports whether samples for s can be decoded right now.
func (s *Stream) decodable() bool {
	if !s.headerSeen {
		return false
	}
	if s.IsString() {
		return true
	}

	return s.Info.ChannelFormat.IsNumeric() && s.Info.ChannelCount > 0
}

func (d *Decoder) decodeSamples(f *File, s *Stream, p *encoding.PayloadReader, offset int64) error {
	if !s.decodable() {
		f.Chunks.SkippedSamples++
		d.cfg.logger.Warn("skipping samples chunk",
			zap.Uint32("stream_id", s.ID),
			zap.Int64("offset", offset),
			zap.Bool("header_seen", s.headerSeen),
			zap.String("channel_format", s.Info.FormatName),
			zap.Int("channel_count", s.Info.ChannelCount),
		)

		return nil
	}

	// A header repeated with another channel count cannot extend the
	// existing rows.
	if !s.IsString() && len(s.TimeSeries) > 0 && len(s.TimeSeries) != s.Info.ChannelCount {
		f.Chunks.SkippedSamples++
		d.cfg.logger.Warn("skipping samples chunk, channel count changed",
			zap.Uint32("stream_id", s.ID),
			zap.Int64("offset", offset),
			zap.Int("rows", len(s.TimeSeries)),
			zap.Int("channel_count", s.Info.ChannelCount),
		)

		return nil
	}

	count, err := p.Length()
	if err != nil {
		return fmt.Errorf("sample count: %w", err)
	}

	if s.IsString() {
		return decodeEvents(f, s, p, count)
	}

	return decodeNumeric(s, p, count)
}

// readTimestamp reads the presence byte and, if present, the explicit
// timestamp; otherwise the timestamp is extrapolated from the previous one.
func readTimestamp(s *Stream, p *encoding.PayloadReader) (float64, error) {
	presence, err := p.Uint8()
	if err != nil {
		return 0, fmt.Errorf("timestamp presence: %w", err)
	}

	ts := s.lastTimestamp + s.SamplingInterval
	if presence == explicitTimestamp {
		ts, err = p.Float64()
		if err != nil {
			return 0, fmt.Errorf("timestamp: %w", err)
		}
	}
	s.lastTimestamp = ts

	return ts, nil
}

func decodeNumeric(s *Stream, p *encoding.PayloadReader, count uint64) error {
	if count == 0 {
		return nil
	}

	cf := s.Info.ChannelFormat
	channels := s.Info.ChannelCount
	if channels > math.MaxInt/cf.Width() {
		return fmt.Errorf("%w: stream %d declares %d channels", errs.ErrInvalidChannelCount, s.ID, channels)
	}
	rowBytes := cf.Width() * channels

	// The rows are sized from the header; the payload must hold at least
	// one record before that allocation is trusted.
	if rowBytes > p.Remaining() {
		return fmt.Errorf("%w: stream %d declares %d channels, %d bytes left in chunk",
			errs.ErrTruncated, s.ID, channels, p.Remaining())
	}

	if len(s.TimeSeries) == 0 {
		s.TimeSeries = make([][]float64, channels)
	}

	// A record takes at least 1 + rowBytes bytes; do not trust count further
	// than the payload can back it.
	hint := min(count, uint64(p.Remaining()/(1+rowBytes)))
	for c := range s.TimeSeries {
		s.TimeSeries[c] = slices.Grow(s.TimeSeries[c], int(hint))
	}
	s.Timestamps = slices.Grow(s.Timestamps, int(hint))

	decode := rowDecoderFor(cf)
	engine := p.Engine()

	for i := uint64(0); i < count; i++ {
		ts, err := readTimestamp(s, p)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}

		row, err := p.Next(rowBytes)
		if err != nil {
			return fmt.Errorf("record %d values: %w", i, err)
		}

		decode(s.TimeSeries, row, engine)
		s.Timestamps = append(s.Timestamps, ts)
	}

	return nil
}

func decodeEvents(f *File, s *Stream, p *encoding.PayloadReader, count uint64) error {
	for i := uint64(0); i < count; i++ {
		ts, err := readTimestamp(s, p)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}

		n, err := p.Length()
		if err != nil {
			return fmt.Errorf("event %d length: %w", i, err)
		}
		if n > uint64(p.Remaining()) {
			return fmt.Errorf("%w: event %d declares %d bytes, %d left in chunk", errs.ErrTruncated, i, n, p.Remaining())
		}

		text, _ := p.Next(int(n))
		f.Events = append(f.Events, Event{
			Text:        string(text),
			Timestamp:   ts,
			StreamIndex: s.Index,
		})
		s.eventCount++
	}

	return nil
}

func rowDecoderFor(cf format.ChannelFormat) rowDecoder {
	switch cf { //nolint:exhaustive
	case format.FormatFloat32:
		return func(rows [][]float64, b []byte, engine endian.EndianEngine) {
			for c := range rows {
				rows[c] = append(rows[c], float64(endian.Float32(engine, b[c*4:])))
			}
		}
	case format.FormatDouble64:
		return func(rows [][]float64, b []byte, engine endian.EndianEngine) {
			for c := range rows {
				rows[c] = append(rows[c], endian.Float64(engine, b[c*8:]))
			}
		}
	case format.FormatInt8:
		return func(rows [][]float64, b []byte, _ endian.EndianEngine) {
			for c := range rows {
				rows[c] = append(rows[c], float64(int8(b[c])))
			}
		}
	case format.FormatInt16:
		return func(rows [][]float64, b []byte, engine endian.EndianEngine) {
			for c := range rows {
				rows[c] = append(rows[c], float64(int16(engine.Uint16(b[c*2:])))) //nolint:gosec
			}
		}
	case format.FormatInt32:
		return func(rows [][]float64, b []byte, engine endian.EndianEngine) {
			for c := range rows {
				rows[c] = append(rows[c], float64(int32(engine.Uint32(b[c*4:])))) //nolint:gosec
			}
		}
	default: // format.FormatInt64
		return func(rows [][]float64, b []byte, engine endian.EndianEngine) {
			for c := range rows {
				rows[c] = append(rows[c], float64(int64(engine.Uint64(b[c*8:])))) //nolint:gosec
			}
		}
	}
}

package container

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/arloliu/xdf/encoding"
	"github.com/arloliu/xdf/endian"
	"github.com/arloliu/xdf/errs"
	"github.com/arloliu/xdf/format"
	"github.com/arloliu/xdf/internal/options"
	"github.com/arloliu/xdf/internal/pool"
	"github.com/arloliu/xdf/internal/xmlmeta"
)

// Magic is the 4-byte literal every XDF container starts with.
const Magic = "XDF:"

const readBufferSize = 64 * 1024

// Decoder reads XDF containers into a File.
//
// A Decoder holds only configuration and can be reused for any number of
// Decode calls, including concurrent ones.
type Decoder struct {
	cfg *DecoderConfig
}

// NewDecoder creates a decoder.
//
// Parameters:
//   - opts: Optional configuration (WithLogger, WithMaxChunkSize)
//
// Returns:
//   - *Decoder: The configured decoder
//   - error: An option rejected its argument
func NewDecoder(opts ...DecoderOption) (*Decoder, error) {
	cfg := newDecoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Decoder{cfg: cfg}, nil
}

// chunkReader tracks the absolute offset of everything read from the container.
type chunkReader struct {
	br     *bufio.Reader
	offset int64
}

func (c *chunkReader) Read(p []byte) (int, error) {
	n, err := c.br.Read(p)
	c.offset += int64(n)

	return n, err
}

func (c *chunkReader) readFull(p []byte) error {
	_, err := io.ReadFull(c, p)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: need %d bytes at offset %d", errs.ErrTruncated, len(p), c.offset)
	}

	return err
}

func (c *chunkReader) discard(n int) error {
	d, err := c.br.Discard(n)
	c.offset += int64(d)
	if d < n {
		return fmt.Errorf("%w: skipping %d bytes at offset %d", errs.ErrTruncated, n, c.offset)
	}

	return err
}

// Decode reads a complete container from r.
//
// The decode is atomic: on any fatal error no File is returned. Non-fatal
// irregularities (unknown tags, undecodable samples chunks, malformed XML)
// are logged and decoding continues.
//
// Decode does not synchronize clocks, build the dictionary or compute
// statistics; see File.Synchronize, File.LoadDictionary and
// File.ComputeStatistics.
//
// Returns:
//   - *File: The decoded container
//   - error: errs.ErrInvalidMagic, errs.ErrInvalidLengthIndicator,
//     errs.ErrInvalidChunkLength, errs.ErrChunkTooLarge, errs.ErrTruncated
//     or an I/O error from r
func (d *Decoder) Decode(r io.Reader) (*File, error) {
	start := time.Now()
	cr := &chunkReader{br: bufio.NewReaderSize(r, readBufferSize)}

	var magic [4]byte
	if _, err := io.ReadFull(cr, magic[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: file shorter than magic", errs.ErrInvalidMagic)
		}

		return nil, err
	}
	if string(magic[:]) != Magic {
		return nil, fmt.Errorf("%w: got %q", errs.ErrInvalidMagic, magic[:])
	}

	f := newFile()
	buf := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(buf)

	engine := endian.GetLittleEndianEngine()
	payload := encoding.NewPayloadReader(nil)

	for {
		chunkOffset := cr.offset

		length, err := encoding.ReadLength(cr)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("chunk at offset %d: %w", chunkOffset, err)
		}
		if length == 0 {
			break
		}
		if length < 2 {
			return nil, fmt.Errorf("%w: chunk at offset %d has length %d", errs.ErrInvalidChunkLength, chunkOffset, length)
		}
		if length > d.cfg.maxChunkSize {
			return nil, fmt.Errorf("%w: chunk at offset %d has length %d, limit %d",
				errs.ErrChunkTooLarge, chunkOffset, length, d.cfg.maxChunkSize)
		}

		var tagBuf [2]byte
		if err := cr.readFull(tagBuf[:]); err != nil {
			return nil, fmt.Errorf("chunk at offset %d: %w", chunkOffset, err)
		}
		tag := format.Tag(engine.Uint16(tagBuf[:]))
		size := int(length - 2)

		if tag == format.TagBoundary || !knownTag(tag) {
			if err := cr.discard(size); err != nil {
				return nil, fmt.Errorf("chunk at offset %d: %w", chunkOffset, err)
			}
			d.countSkipped(f, tag, chunkOffset, size)

			continue
		}

		if err := cr.readFull(buf.Resize(size)); err != nil {
			return nil, fmt.Errorf("%s chunk at offset %d: %w", tag, chunkOffset, err)
		}

		payload.Reset(buf.Bytes())
		if err := d.dispatch(f, tag, payload, chunkOffset); err != nil {
			return nil, fmt.Errorf("%s chunk at offset %d: %w", tag, chunkOffset, err)
		}
	}

	d.finish(f)

	d.cfg.logger.Debug("decoded container",
		zap.Int("streams", len(f.Streams)),
		zap.Int("events", len(f.Events)),
		zap.Int("chunks", f.Chunks.Total()),
		zap.Int64("bytes", cr.offset),
		zap.Duration("took", time.Since(start)),
	)

	return f, nil
}

func knownTag(tag format.Tag) bool {
	return tag >= format.TagFileHeader && tag <= format.TagStreamFooter
}

func (d *Decoder) countSkipped(f *File, tag format.Tag, offset int64, size int) {
	if tag == format.TagBoundary {
		f.Chunks.Boundary++
		return
	}

	f.Chunks.Unknown++
	d.cfg.logger.Warn("skipping chunk with unknown tag",
		zap.Uint16("tag", uint16(tag)),
		zap.Int64("offset", offset),
		zap.Int("size", size),
	)
}

func (d *Decoder) dispatch(f *File, tag format.Tag, p *encoding.PayloadReader, offset int64) error {
	switch tag { //nolint:exhaustive
	case format.TagFileHeader:
		f.Chunks.FileHeader++
		d.readFileHeader(f, p.Rest())

		return nil
	case format.TagStreamHeader:
		f.Chunks.StreamHeader++
	case format.TagSamples:
		f.Chunks.Samples++
	case format.TagClockOffset:
		f.Chunks.ClockOffset++
	case format.TagStreamFooter:
		f.Chunks.StreamFooter++
	}

	id, err := p.Uint32()
	if err != nil {
		return fmt.Errorf("stream id: %w", err)
	}
	s, created := f.registry.resolve(id)
	if created {
		d.cfg.logger.Debug("registered stream",
			zap.Uint32("stream_id", id),
			zap.Int("index", s.Index),
			zap.Stringer("first_chunk", tag),
		)
	}

	switch tag { //nolint:exhaustive
	case format.TagStreamHeader:
		d.readStreamHeader(s, p.Rest())
	case format.TagSamples:
		return d.decodeSamples(f, s, p, offset)
	case format.TagClockOffset:
		return readClockOffset(s, p)
	case format.TagStreamFooter:
		d.readStreamFooter(s, p.Rest())
	}

	return nil
}

func (d *Decoder) readFileHeader(f *File, xml []byte) {
	f.RawHeader = string(xml)

	doc, err := xmlmeta.Parse(xml)
	if err != nil {
		d.cfg.logger.Warn("malformed file header", zap.Error(err))
	}
	f.Version = doc.Path("info", "version").Float()
}

func (d *Decoder) readStreamHeader(s *Stream, xml []byte) {
	if s.headerSeen {
		d.cfg.logger.Warn("duplicate stream header, replacing metadata", zap.Uint32("stream_id", s.ID))
	}

	doc, err := xmlmeta.Parse(xml)
	if err != nil {
		d.cfg.logger.Warn("malformed stream header", zap.Uint32("stream_id", s.ID), zap.Error(err))
	}

	info := doc.Child("info")
	s.Info = StreamInfo{
		Name:          info.Child("name").Text(),
		Type:          info.Child("type").Text(),
		ChannelCount:  info.Child("channel_count").Int(),
		NominalSrate:  info.Child("nominal_srate").Float(),
		FormatName:    info.Child("channel_format").Text(),
		SourceID:      info.Child("source_id").Text(),
		Version:       info.Child("version").Float(),
		CreatedAt:     info.Child("created_at").Float(),
		UID:           info.Child("uid").Text(),
		SessionID:     info.Child("session_id").Text(),
		Hostname:      info.Child("hostname").Text(),
		V4Address:     info.Child("v4address").Text(),
		V4DataPort:    info.Child("v4data_port").Int(),
		V4ServicePort: info.Child("v4service_port").Int(),
		V6Address:     info.Child("v6address").Text(),
		V6DataPort:    info.Child("v6data_port").Int(),
		V6ServicePort: info.Child("v6service_port").Int(),
		Desc:          info.Child("desc").InnerXML(),
		RawHeader:     string(xml),
	}

	for _, ch := range info.Path("desc", "channels").ChildrenNamed("channel") {
		s.Info.Channels = append(s.Info.Channels, ChannelDesc{
			Label: ch.Child("label").Text(),
			Unit:  ch.Child("unit").Text(),
			Type:  ch.Child("type").Text(),
		})
	}

	cf, ok := format.ParseChannelFormat(s.Info.FormatName)
	if !ok {
		d.cfg.logger.Warn("stream samples will be skipped",
			zap.Uint32("stream_id", s.ID),
			zap.Error(fmt.Errorf("%w: %q", errs.ErrUnknownChannelFormat, s.Info.FormatName)),
		)
	}
	s.Info.ChannelFormat = cf

	if s.Info.NominalSrate > 0 {
		s.SamplingInterval = 1 / s.Info.NominalSrate
	} else {
		s.SamplingInterval = 0
	}

	s.headerSeen = true
}

func readClockOffset(s *Stream, p *encoding.PayloadReader) error {
	collectionTime, err := p.Float64()
	if err != nil {
		return fmt.Errorf("clock collection time: %w", err)
	}
	offset, err := p.Float64()
	if err != nil {
		return fmt.Errorf("clock offset value: %w", err)
	}

	s.ClockTimes = append(s.ClockTimes, collectionTime)
	s.ClockValues = append(s.ClockValues, offset)

	return nil
}

func (d *Decoder) readStreamFooter(s *Stream, xml []byte) {
	doc, err := xmlmeta.Parse(xml)
	if err != nil {
		d.cfg.logger.Warn("malformed stream footer", zap.Uint32("stream_id", s.ID), zap.Error(err))
	}

	info := doc.Child("info")
	s.Footer = Footer{
		FirstTimestamp: floatOrNaN(info.Child("first_timestamp")),
		LastTimestamp:  floatOrNaN(info.Child("last_timestamp")),
		SampleCount:    info.Child("sample_count").Int(),
		MeasuredSrate:  info.Child("measured_srate").Float(),
		Seen:           true,
	}
}

func floatOrNaN(n *xmlmeta.Node) float64 {
	if n == nil || n.Text() == "" {
		return math.NaN()
	}

	return n.Float()
}

// finish back-fills footer fields that no StreamFooter chunk provided.
func (d *Decoder) finish(f *File) {
	bounds := f.dataBounds()
	for i, s := range f.Streams {
		if !s.Footer.Seen {
			s.Footer.SampleCount = s.SampleCount()
		}

		b := bounds[i]
		if !b.ok {
			continue
		}
		if math.IsNaN(s.Footer.FirstTimestamp) {
			s.Footer.FirstTimestamp = b.first
		}
		if math.IsNaN(s.Footer.LastTimestamp) {
			s.Footer.LastTimestamp = b.last
		}
	}
}

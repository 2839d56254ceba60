// Package xdf loads XDF (Extensible Data Format) recordings.
//
// An XDF file interleaves chunks from any number of independently clocked
// streams: regularly sampled numeric channels (EEG, motion, audio envelopes)
// and irregular string marker streams. Loading a file decodes every chunk,
// applies the recorded clock offsets, interns marker texts and derives the
// cross-stream statistics needed for plotting or resampling.
//
// # Basic Usage
//
//	f, err := xdf.LoadFile("session.xdf")
//	if err != nil {
//		return err
//	}
//	for _, s := range f.Streams {
//		fmt.Println(s.Info.Name, s.Info.ChannelCount, s.SampleCount())
//	}
//
// Resampling every regular stream to the dominant rate:
//
//	report, err := xdf.Resample(ctx, f, f.Stats.MajorSrate)
//
// Appending a marker stream to an existing recording:
//
//	id, err := xdf.AppendEvents("session.xdf", container.NewMarkerHeader("Notes", "Markers"), events)
//
// # Package Structure
//
// This package wraps the container, compress, resample and dsp packages for
// the common cases. Use them directly for finer control, e.g. to decode
// without clock synchronization.
package xdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/arloliu/xdf/compress"
	"github.com/arloliu/xdf/container"
	"github.com/arloliu/xdf/dsp"
	"github.com/arloliu/xdf/errs"
	"github.com/arloliu/xdf/format"
	"github.com/arloliu/xdf/internal/options"
	"github.com/arloliu/xdf/resample"
)

// LoadConfig holds the Load settings.
type LoadConfig struct {
	logger      *zap.Logger
	decoderOpts []container.DecoderOption
}

// LoadOption configures Load and LoadFile.
type LoadOption = options.Option[*LoadConfig]

// WithLogger sets the logger used for decode warnings and the load summary.
func WithLogger(logger *zap.Logger) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}

// WithDecoderOptions passes options through to the container decoder.
func WithDecoderOptions(opts ...container.DecoderOption) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.decoderOpts = append(c.decoderOpts, opts...)
	})
}

func newLoadConfig(opts []LoadOption) (*LoadConfig, error) {
	cfg := &LoadConfig{logger: zap.NewNop()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load decodes a plain or compressed container from r.
//
// The compression is detected from the leading bytes. After decoding, clock
// offsets are applied, the event dictionary is built and f.Stats is filled.
// Load is atomic: on error no File is returned.
//
// Parameters:
//   - r: Container stream
//   - opts: Optional settings (WithLogger, WithDecoderOptions)
//
// Returns:
//   - *container.File: Fully post-processed recording
//   - error: Decode error (see container.Decoder.Decode) or decompression error
func Load(r io.Reader, opts ...LoadOption) (*container.File, error) {
	cfg, err := newLoadConfig(opts)
	if err != nil {
		return nil, err
	}

	f, _, err := load(r, cfg)

	return f, err
}

func load(r io.Reader, cfg *LoadConfig) (*container.File, format.CompressionType, error) {
	start := time.Now()

	rc, ct, err := compress.NewDetectingReader(r)
	if err != nil {
		return nil, ct, err
	}
	defer rc.Close()

	decoderOpts := append([]container.DecoderOption{container.WithLogger(cfg.logger)}, cfg.decoderOpts...)
	dec, err := container.NewDecoder(decoderOpts...)
	if err != nil {
		return nil, ct, err
	}

	f, err := dec.Decode(rc)
	if err != nil {
		return nil, ct, err
	}
	if err := f.Synchronize(); err != nil {
		return nil, ct, err
	}
	f.LoadDictionary()
	stats := f.ComputeStatistics()

	cfg.logger.Debug("loaded recording",
		zap.Stringer("compression", ct),
		zap.Int("streams", len(f.Streams)),
		zap.Int("channels", stats.TotalChannels),
		zap.Int("event_types", f.Dictionary.Len()),
		zap.Bool("event_hash_collision", f.Dictionary.HasCollision()),
		zap.Float64("major_srate", stats.MajorSrate),
		zap.Duration("took", time.Since(start)),
	)

	return f, ct, nil
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string, opts ...LoadOption) (*container.File, error) {
	cfg, err := newLoadConfig(opts)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, _, err := load(file, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// Resample converts every regular stream of f to rate Hz in place using the
// polyphase resampler from package dsp.
//
// Streams whose ratio the resampler cannot realize are left unchanged and
// listed in the report.
//
// Parameters:
//   - ctx: Cancels streams that have not started
//   - f: Loaded recording
//   - rate: Target rate in Hz
//   - opts: Orchestrator options (resample.WithLogger, resample.WithConcurrency)
//
// Returns:
//   - *resample.Report: Per-stream outcome and total length at rate; on
//     cancellation it lists the streams that were already rewritten
//   - error: errs.ErrInvalidRate, an invalid option, or ctx.Err()
func Resample(ctx context.Context, f *container.File, rate float64, opts ...resample.Option) (*resample.Report, error) {
	factory, err := dsp.NewFactory()
	if err != nil {
		return nil, err
	}

	orch, err := resample.NewOrchestrator(factory, opts...)
	if err != nil {
		return nil, err
	}

	return orch.Run(ctx, f, rate)
}

// AppendEvents appends a new marker stream holding events to the plain
// container at path.
//
// The file is loaded first to validate it and to pick an unused stream id.
// header is written verbatim as the stream header XML; see
// container.NewMarkerHeader.
//
// Parameters:
//   - path: Plain (uncompressed) XDF file
//   - header: Stream header XML
//   - events: Markers in the order they should be stored
//   - opts: Load options used for validation
//
// Returns:
//   - uint32: The id of the appended stream
//   - error: Load or write error; errs.ErrUnsupportedCompression for a
//     compressed file
func AppendEvents(path, header string, events []container.Event, opts ...LoadOption) (uint32, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	cfg, err := newLoadConfig(opts)
	if err != nil {
		return 0, err
	}

	f, ct, err := load(file, cfg)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if ct != format.CompressionNone {
		return 0, fmt.Errorf("%s: %w: cannot append to a %s container", path, errs.ErrUnsupportedCompression, ct)
	}

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return 0, err
	}
	id := f.NextStreamID()
	if _, err := container.WriteEvents(file, id, header, events); err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	return id, file.Sync()
}

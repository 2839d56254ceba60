package resample

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/xdf/container"
	"github.com/arloliu/xdf/errs"
	"github.com/arloliu/xdf/internal/options"
)

// Orchestrator resamples every regular stream of a File to one target rate.
type Orchestrator struct {
	factory Factory
	cfg     *Config
}

// StreamError is a per-stream resampling failure.
type StreamError struct {
	StreamIndex int
	StreamID    uint32
	Err         error
}

func (e StreamError) Error() string {
	return fmt.Sprintf("stream %d (id %d): %v", e.StreamIndex, e.StreamID, e.Err)
}

func (e StreamError) Unwrap() error { return e.Err }

// Report describes the outcome of one Run.
type Report struct {
	// TargetRate is the rate every resampled stream now runs at.
	TargetRate float64
	// Resampled lists the indices of the streams that were converted, ascending.
	Resampled []int
	// Skipped lists the streams whose resampler could not be configured.
	// Their data is left at the original rate.
	Skipped []StreamError
	// ReleaseErrors lists streams whose resampler failed to close. Their
	// output is complete.
	ReleaseErrors []StreamError
	// TotalLength is the number of samples a target-rate grid covering the
	// whole recording needs: (MaxTimestamp-MinTimestamp)*TargetRate, widened
	// to the longest channel of any stream.
	TotalLength uint64
}

// Err combines all per-stream failures, or returns nil if there were none.
//
// The failures are informational; a Run that produced a Report completed.
func (r *Report) Err() error {
	var err error
	for _, e := range r.Skipped {
		err = multierr.Append(err, e)
	}
	for _, e := range r.ReleaseErrors {
		err = multierr.Append(err, e)
	}

	return err
}

// NewOrchestrator creates an orchestrator driving resamplers from factory.
//
// Parameters:
//   - factory: Resampler factory, e.g. dsp.NewFactory()
//   - opts: Optional settings (WithLogger, WithConcurrency, WithQuality)
//
// Returns:
//   - *Orchestrator: Ready orchestrator
//   - error: Invalid option
func NewOrchestrator(factory Factory, opts ...Option) (*Orchestrator, error) {
	if factory == nil {
		return nil, fmt.Errorf("resample: nil factory")
	}

	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Orchestrator{factory: factory, cfg: cfg}, nil
}

type outcome struct {
	done       bool
	skipErr    error
	releaseErr error
}

// Run resamples f in place to targetRate.
//
// A stream is eligible when it has numeric data, a positive nominal rate,
// and that rate differs from targetRate. Eligible streams are processed in
// parallel; each channel is pushed whole, flushed, and replaced by the
// output. Timestamps and stream metadata are left unchanged.
//
// Run refreshes f.Stats before computing TotalLength.
//
// When ctx is canceled mid-run, streams already handed to a resampler are
// finished and rewritten; the rest are left untouched. Run then returns the
// partial Report, listing only the finished streams, together with ctx.Err().
//
// Parameters:
//   - ctx: Cancels streams that have not started yet
//   - f: Decoded, synchronized file
//   - targetRate: Output rate in Hz
//
// Returns:
//   - *Report: Per-stream outcome and reconciled total length; partial on cancellation
//   - error: errs.ErrInvalidRate for a non-positive target (nil Report), or ctx.Err()
func (o *Orchestrator) Run(ctx context.Context, f *container.File, targetRate float64) (*Report, error) {
	if !(targetRate > 0) || math.IsInf(targetRate, 0) {
		return nil, fmt.Errorf("%w: target rate %v", errs.ErrInvalidRate, targetRate)
	}

	outcomes := make([]outcome, len(f.Streams))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.concurrency)
	for i, s := range f.Streams {
		if !eligible(s, targetRate) {
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i].skipErr, outcomes[i].releaseErr = o.resampleStream(s, targetRate)
			outcomes[i].done = true

			return nil
		})
	}
	runErr := g.Wait()

	report := &Report{TargetRate: targetRate}
	for i, out := range outcomes {
		if !out.done {
			continue
		}
		s := f.Streams[i]
		if out.skipErr != nil {
			report.Skipped = append(report.Skipped, StreamError{StreamIndex: i, StreamID: s.ID, Err: out.skipErr})
			continue
		}
		report.Resampled = append(report.Resampled, i)
		if out.releaseErr != nil {
			report.ReleaseErrors = append(report.ReleaseErrors, StreamError{StreamIndex: i, StreamID: s.ID, Err: out.releaseErr})
		}
	}

	stats := f.ComputeStatistics()
	report.TotalLength = totalLength(f, stats, targetRate)

	return report, runErr
}

func eligible(s *container.Stream, targetRate float64) bool {
	rate := s.Info.NominalSrate

	return len(s.TimeSeries) > 0 && rate > 0 && rate != targetRate
}

// resampleStream returns the configuration error, if any, and the error
// from releasing the resampler.
func (o *Orchestrator) resampleStream(s *container.Stream, targetRate float64) (skipErr, releaseErr error) {
	start := time.Now()
	log := o.cfg.logger.With(
		zap.Int("stream", s.Index),
		zap.Uint32("stream_id", s.ID),
		zap.Float64("in_rate", s.Info.NominalSrate),
		zap.Float64("out_rate", targetRate),
	)

	rs, err := o.factory.Configure(s.Info.NominalSrate, targetRate, o.cfg.quality)
	if err != nil {
		log.Warn("stream left at original rate", zap.Error(err))
		return err, nil
	}
	defer func() {
		if err := rs.Close(); err != nil {
			log.Warn("failed to release resampler", zap.Error(err))
			releaseErr = err
		}
	}()

	for c, row := range s.TimeSeries {
		merged := append([]float64(nil), rs.Push(row)...)
		merged = append(merged, rs.Flush()...)
		s.TimeSeries[c] = merged
		rs.Reset()
	}

	log.Debug("stream resampled",
		zap.Int("channels", len(s.TimeSeries)),
		zap.Int("samples", len(s.TimeSeries[0])),
		zap.Duration("duration", time.Since(start)),
	)

	return nil, nil
}

func totalLength(f *container.File, stats container.Statistics, targetRate float64) uint64 {
	var total uint64
	if stats.HasBounds {
		if span := (stats.MaxTimestamp - stats.MinTimestamp) * targetRate; span > 0 && !math.IsInf(span, 0) {
			total = uint64(span)
		}
	}

	for _, s := range f.Streams {
		for _, row := range s.TimeSeries {
			if n := uint64(len(row)); n > total {
				total = n
			}
		}
	}

	return total
}

package resample

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arloliu/xdf/container"
	"github.com/arloliu/xdf/errs"
	"github.com/arloliu/xdf/internal/xdftest"
)

type streamDef struct {
	srate    float64
	channels int
	samples  int
	value    float64
}

// recording decodes a container with one float64 stream per definition plus a
// trailing marker stream. Stream i holds def.value+channel in every sample.
func recording(t *testing.T, defs ...streamDef) *container.File {
	t.Helper()

	b := xdftest.New()
	for i, sp := range defs {
		id := uint32(i + 1)
		b.StreamHeader(id, xdftest.StreamHeaderXML(fmt.Sprintf("s%d", i), "EEG", sp.channels, sp.srate, "double64"))

		records := make([][]byte, 0, sp.samples)
		for n := range sp.samples {
			ts := float64(n)
			if sp.srate > 0 {
				ts /= sp.srate
			}
			vals := make([]float64, sp.channels)
			for c := range vals {
				vals[c] = sp.value + float64(c)
			}
			records = append(records, xdftest.Record(xdftest.TS(ts), xdftest.F64(vals...)))
		}
		b.Samples(id, records...)
	}
	markers := uint32(len(defs) + 1)
	b.StreamHeader(markers, xdftest.StreamHeaderXML("markers", "Markers", 1, 0, "string"))
	b.Samples(markers, xdftest.Record(xdftest.TS(0), xdftest.Str("start")))

	dec, err := container.NewDecoder()
	require.NoError(t, err)
	f, err := dec.Decode(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	require.NoError(t, f.Synchronize())

	return f
}

// fakeFactory produces resamplers that emit floor(n*ratio) copies of the last
// pushed sample followed by a single flushed sample.
type fakeFactory struct {
	mu         sync.Mutex
	fail       map[float64]error
	closeErr   error
	configured int
	closed     int
	qualities  []Quality

	// onConfigure runs after every successful Configure.
	onConfigure func()
}

func (f *fakeFactory) Configure(in, out float64, q Quality) (Resampler, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fail[in]; err != nil {
		return nil, err
	}
	f.configured++
	f.qualities = append(f.qualities, q)
	if f.onConfigure != nil {
		f.onConfigure()
	}

	return &fakeResampler{factory: f, ratio: out / in}, nil
}

type fakeResampler struct {
	factory *fakeFactory
	ratio   float64
	last    float64
	pending bool
	buf     []float64
}

func (r *fakeResampler) fill(n int) []float64 {
	r.buf = r.buf[:0]
	for range n {
		r.buf = append(r.buf, r.last)
	}

	return r.buf
}

func (r *fakeResampler) Push(in []float64) []float64 {
	if len(in) == 0 {
		return nil
	}
	r.last = in[len(in)-1]
	r.pending = true

	return r.fill(int(float64(len(in)) * r.ratio))
}

func (r *fakeResampler) Flush() []float64 {
	if !r.pending {
		return nil
	}
	r.pending = false

	return r.fill(1)
}

func (r *fakeResampler) Reset() {
	r.last = 0
	r.pending = false
}

func (r *fakeResampler) Close() error {
	r.factory.mu.Lock()
	defer r.factory.mu.Unlock()
	r.factory.closed++

	return r.factory.closeErr
}

func TestRun_ResamplesEligibleStreams(t *testing.T) {
	f := recording(t,
		streamDef{srate: 100, channels: 2, samples: 10, value: 1},
		streamDef{srate: 200, channels: 1, samples: 20, value: 5}, // already at target
		streamDef{srate: 0, channels: 1, samples: 3, value: 7},    // irregular
	)
	factory := &fakeFactory{}
	o, err := NewOrchestrator(factory)
	require.NoError(t, err)

	report, err := o.Run(context.Background(), f, 200)
	require.NoError(t, err)
	require.NoError(t, report.Err())

	require.Equal(t, []int{0}, report.Resampled)
	require.Empty(t, report.Skipped)
	require.Equal(t, 1, factory.configured)
	require.Equal(t, 1, factory.closed)
	require.Equal(t, []Quality{DefaultQuality()}, factory.qualities)

	s := f.Streams[0]
	require.Len(t, s.TimeSeries, 2)
	for c, row := range s.TimeSeries {
		require.Len(t, row, 21, "20 pushed + 1 flushed")
		for _, v := range row {
			require.Equal(t, 1.0+float64(c), v)
		}
	}
	require.Len(t, s.Timestamps, 10, "timestamps are left untouched")
	require.Equal(t, 100.0, s.Info.NominalSrate)

	require.Len(t, f.Streams[1].TimeSeries[0], 20)
	require.Len(t, f.Streams[2].TimeSeries[0], 3)
	require.Empty(t, f.Streams[3].TimeSeries)
}

func TestRun_ConfigureFailureSkipsStream(t *testing.T) {
	f := recording(t,
		streamDef{srate: 333, channels: 1, samples: 4, value: 1},
		streamDef{srate: 100, channels: 1, samples: 4, value: 2},
	)
	core, logs := observer.New(zapcore.WarnLevel)
	factory := &fakeFactory{fail: map[float64]error{333: errs.ErrUnsupportedRatio}}
	o, err := NewOrchestrator(factory, WithLogger(zap.New(core)))
	require.NoError(t, err)

	report, err := o.Run(context.Background(), f, 50)
	require.NoError(t, err)

	require.Equal(t, []int{1}, report.Resampled)
	require.Len(t, report.Skipped, 1)
	require.Equal(t, 0, report.Skipped[0].StreamIndex)
	require.Equal(t, uint32(1), report.Skipped[0].StreamID)
	require.ErrorIs(t, report.Err(), errs.ErrUnsupportedRatio)

	require.Equal(t, []float64{1, 1, 1, 1}, f.Streams[0].TimeSeries[0])
	require.Len(t, f.Streams[1].TimeSeries[0], 3)
	require.Equal(t, factory.configured, factory.closed)

	entries := logs.FilterMessage("stream left at original rate").All()
	require.Len(t, entries, 1)
	require.Equal(t, int64(0), entries[0].ContextMap()["stream"])
}

func TestRun_ReleaseError(t *testing.T) {
	f := recording(t, streamDef{srate: 10, channels: 1, samples: 2, value: 1})
	closeErr := errors.New("boom")
	o, err := NewOrchestrator(&fakeFactory{closeErr: closeErr})
	require.NoError(t, err)

	report, err := o.Run(context.Background(), f, 20)
	require.NoError(t, err)
	require.Equal(t, []int{0}, report.Resampled)
	require.Len(t, report.ReleaseErrors, 1)
	require.ErrorIs(t, report.Err(), closeErr)
	require.Len(t, f.Streams[0].TimeSeries[0], 5)
}

func TestRun_TotalLength(t *testing.T) {
	t.Run("widened to longest channel", func(t *testing.T) {
		// 100 samples at 10 Hz span 9.9s, about 990 samples at 100 Hz; the
		// resampler produces 1001.
		f := recording(t, streamDef{srate: 10, channels: 1, samples: 100, value: 1})
		o, err := NewOrchestrator(&fakeFactory{})
		require.NoError(t, err)

		report, err := o.Run(context.Background(), f, 100)
		require.NoError(t, err)
		require.Len(t, f.Streams[0].TimeSeries[0], 1001)
		require.Equal(t, uint64(1001), report.TotalLength)
	})

	t.Run("span dominates", func(t *testing.T) {
		// Samples cover [0, 12.375]; the marker moves the start to -87.625.
		f := recording(t, streamDef{srate: 8, channels: 1, samples: 100, value: 1})
		f.Events[0].Timestamp = -87.625
		o, err := NewOrchestrator(&fakeFactory{})
		require.NoError(t, err)

		report, err := o.Run(context.Background(), f, 100)
		require.NoError(t, err)
		require.Len(t, f.Streams[0].TimeSeries[0], 1251)
		require.Equal(t, uint64(10000), report.TotalLength)
	})

	t.Run("widened by untouched stream", func(t *testing.T) {
		// The stream is already at target; its row is longer than the span.
		f := recording(t,
			streamDef{srate: 500, channels: 1, samples: 7, value: 1},
		)
		f.Streams[0].TimeSeries[0] = append(f.Streams[0].TimeSeries[0], 0, 0, 0)
		o, err := NewOrchestrator(&fakeFactory{})
		require.NoError(t, err)

		report, err := o.Run(context.Background(), f, 500)
		require.NoError(t, err)
		require.Empty(t, report.Resampled)
		require.Equal(t, uint64(10), report.TotalLength)
	})
}

func TestRun_ParallelMatchesSequentialOrder(t *testing.T) {
	defs := make([]streamDef, 24)
	for i := range defs {
		defs[i] = streamDef{srate: float64(10 + i), channels: 3, samples: 8, value: float64(100 * i)}
	}

	run := func(concurrency int) *container.File {
		f := recording(t, defs...)
		o, err := NewOrchestrator(&fakeFactory{}, WithConcurrency(concurrency))
		require.NoError(t, err)
		report, err := o.Run(context.Background(), f, 1000)
		require.NoError(t, err)
		require.Len(t, report.Resampled, len(defs))

		return f
	}

	sequential := run(1)
	parallel := run(8)
	for i := range defs {
		require.Equal(t, sequential.Streams[i].TimeSeries, parallel.Streams[i].TimeSeries, "stream %d", i)
		require.Equal(t, float64(100*i)+2, parallel.Streams[i].TimeSeries[2][0])
	}
}

func TestRun_Errors(t *testing.T) {
	f := recording(t, streamDef{srate: 10, channels: 1, samples: 2, value: 1})
	o, err := NewOrchestrator(&fakeFactory{})
	require.NoError(t, err)

	for _, rate := range []float64{0, -1} {
		_, err = o.Run(context.Background(), f, rate)
		require.ErrorIs(t, err, errs.ErrInvalidRate)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := o.Run(ctx, f, 20)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	require.Empty(t, report.Resampled)
	require.Len(t, f.Streams[0].TimeSeries[0], 2, "canceled run must not touch data")
}

func TestRun_CanceledMidRun(t *testing.T) {
	f := recording(t,
		streamDef{srate: 10, channels: 1, samples: 4, value: 1},
		streamDef{srate: 10, channels: 1, samples: 4, value: 2},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	factory := &fakeFactory{onConfigure: cancel}
	o, err := NewOrchestrator(factory, WithConcurrency(1))
	require.NoError(t, err)

	report, err := o.Run(ctx, f, 20)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	require.Equal(t, []int{0}, report.Resampled, "the started stream is finished and reported")
	require.Empty(t, report.Skipped)
	require.Len(t, f.Streams[0].TimeSeries[0], 9)
	require.Len(t, f.Streams[1].TimeSeries[0], 4, "streams not started are left untouched")
	require.Equal(t, uint64(9), report.TotalLength)
	require.Equal(t, 1, factory.configured)
}

func TestNewOrchestrator_Options(t *testing.T) {
	_, err := NewOrchestrator(nil)
	require.Error(t, err)

	_, err = NewOrchestrator(&fakeFactory{}, WithConcurrency(0))
	require.Error(t, err)

	custom := Quality{Bandwidth: 0.9, PassbandRipple: 1, StopbandAttenuation: 80, Tolerance: 1e-3}
	factory := &fakeFactory{}
	o, err := NewOrchestrator(factory, WithQuality(custom), WithLogger(nil))
	require.NoError(t, err)

	_, err = o.Run(context.Background(), recording(t, streamDef{srate: 10, channels: 1, samples: 1}), 20)
	require.NoError(t, err)
	require.Equal(t, []Quality{custom}, factory.qualities)
}

package xdf

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arloliu/xdf/compress"
	"github.com/arloliu/xdf/container"
	"github.com/arloliu/xdf/errs"
	"github.com/arloliu/xdf/format"
	"github.com/arloliu/xdf/internal/xdftest"
)

// session builds a recording with a 2-channel 100 Hz EEG stream, a 1-channel
// 200 Hz stream and a marker stream, all with clock offsets.
func session() []byte {
	b := xdftest.New().
		FileHeader(xdftest.FileHeaderXML("1.0")).
		StreamHeader(1, xdftest.StreamHeaderXML("eeg", "EEG", 2, 100, "float32")).
		StreamHeader(2, xdftest.StreamHeaderXML("acc", "Motion", 1, 200, "double64")).
		StreamHeader(3, xdftest.StreamHeaderXML("markers", "Markers", 1, 0, "string"))

	eeg := make([][]byte, 0, 100)
	for i := range 100 {
		ts := xdftest.NoTS()
		if i == 0 {
			ts = xdftest.TS(1)
		}
		eeg = append(eeg, xdftest.Record(ts, xdftest.F32(float32(i), float32(-i))))
	}
	acc := make([][]byte, 0, 200)
	for i := range 200 {
		acc = append(acc, xdftest.Record(xdftest.TS(1+float64(i)/200), xdftest.F64(0.5)))
	}

	return b.
		Samples(1, eeg...).
		Samples(3, xdftest.Record(xdftest.TS(1.5), xdftest.Str("start"))).
		Samples(2, acc...).
		Samples(3, xdftest.Record(xdftest.TS(1.75), xdftest.Str("stop")), xdftest.Record(xdftest.TS(1.8), xdftest.Str("start"))).
		ClockOffset(1, 0, 0.5).
		ClockOffset(2, 0, 0.5).
		ClockOffset(3, 0, 0.5).
		StreamFooter(1, xdftest.FooterXML(1, 1.99, 100)).
		Bytes()
}

func TestLoad(t *testing.T) {
	f, err := Load(bytes.NewReader(session()))
	require.NoError(t, err)

	require.Equal(t, 1.0, f.Version)
	require.Len(t, f.Streams, 3)
	require.True(t, f.Synchronized())

	eeg := f.Streams[0]
	require.Equal(t, "eeg", eeg.Info.Name)
	require.Len(t, eeg.TimeSeries, 2)
	require.Len(t, eeg.TimeSeries[0], 100)
	require.Len(t, eeg.Timestamps, 100)
	require.Equal(t, 100, eeg.SampleCount())
	require.Equal(t, -99.0, eeg.TimeSeries[1][99])
	require.InDelta(t, 1.5, eeg.Timestamps[0], 1e-12)
	require.InDelta(t, 1.6, eeg.Timestamps[10], 1e-9)

	require.Len(t, f.Events, 3)
	require.Equal(t, []int{0, 1, 0}, f.EventType)
	require.InDelta(t, 2.0, f.Events[0].Timestamp, 1e-12)

	require.Equal(t, 100.0, f.Stats.MajorSrate)
	require.Equal(t, 200.0, f.Stats.MaxSrate)
	require.Equal(t, 3, f.Stats.TotalChannels)
	require.InDelta(t, 1.5, f.Stats.MinTimestamp, 1e-12)
}

func TestLoad_Compressed(t *testing.T) {
	plain := session()
	want, err := Load(bytes.NewReader(plain))
	require.NoError(t, err)

	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := compress.GetCodec(ct)
			require.NoError(t, err)
			packed, err := compress.Compress(codec, plain)
			require.NoError(t, err)

			f, err := Load(bytes.NewReader(packed))
			require.NoError(t, err)
			require.Equal(t, want.Streams[0].TimeSeries, f.Streams[0].TimeSeries)
			require.Equal(t, want.Events, f.Events)
			require.Equal(t, want.Stats, f.Stats)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	f, err := Load(bytes.NewReader([]byte("PNG\x00garbage")))
	require.ErrorIs(t, err, errs.ErrInvalidMagic)
	require.Nil(t, f)

	truncated := session()
	truncated = truncated[:len(truncated)-3]
	f, err = Load(bytes.NewReader(truncated))
	require.ErrorIs(t, err, errs.ErrTruncated)
	require.Nil(t, f)

	_, err = Load(bytes.NewReader(session()), WithDecoderOptions(container.WithMaxChunkSize(1)))
	require.Error(t, err)

	_, err = Load(bytes.NewReader(session()), WithDecoderOptions(container.WithMaxChunkSize(64)))
	require.ErrorIs(t, err, errs.ErrChunkTooLarge)
}

func TestLoad_LogsSummary(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := Load(bytes.NewReader(session()), WithLogger(zap.New(core)))
	require.NoError(t, err)

	entries := logs.FilterMessage("loaded recording").All()
	require.Len(t, entries, 1)
	require.Equal(t, "None", entries[0].ContextMap()["compression"])
	require.Equal(t, int64(3), entries[0].ContextMap()["channels"])
	require.Equal(t, int64(2), entries[0].ContextMap()["event_types"])
	require.Equal(t, false, entries[0].ContextMap()["event_hash_collision"])
	require.NotEmpty(t, logs.FilterMessage("decoded container").All(), "decoder inherits the logger")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.xdfz")
	packed, err := compress.Compress(compress.NewZstdCodec(), session())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, packed, 0o600))

	f, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, f.Streams, 3)

	_, err = LoadFile(filepath.Join(dir, "missing.xdf"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.xdf")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o600))
	_, err = LoadFile(bad)
	require.ErrorIs(t, err, errs.ErrInvalidMagic)
	require.Contains(t, err.Error(), bad)
}

func TestResample(t *testing.T) {
	f, err := Load(bytes.NewReader(session()))
	require.NoError(t, err)

	report, err := Resample(context.Background(), f, 200)
	require.NoError(t, err)
	require.NoError(t, report.Err())

	require.Equal(t, []int{0}, report.Resampled)
	require.Len(t, f.Streams[0].TimeSeries[0], 200)
	require.Len(t, f.Streams[0].TimeSeries[1], 200)
	require.Len(t, f.Streams[1].TimeSeries[0], 200, "already at target")
	require.GreaterOrEqual(t, report.TotalLength, uint64(200))

	_, err = Resample(context.Background(), f, 0)
	require.ErrorIs(t, err, errs.ErrInvalidRate)
}

func TestAppendEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.xdf")
	require.NoError(t, os.WriteFile(path, session(), 0o600))

	events := []container.Event{
		{Text: "note", Timestamp: 1.25},
		{Text: "start", Timestamp: 1.9},
	}
	id, err := AppendEvents(path, container.NewMarkerHeader("Notes", "Markers"), events)
	require.NoError(t, err)
	require.Equal(t, uint32(4), id)

	f, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, f.Streams, 4)
	require.Equal(t, "Notes", f.Streams[3].Info.Name)
	require.Len(t, f.Events, 5)
	require.Equal(t, "note", f.Events[3].Text)
	require.Equal(t, 1.25, f.Events[3].Timestamp, "appended stream has no clock offsets")
	require.Equal(t, []int{0, 1, 0, 2, 0}, f.EventType)

	id, err = AppendEvents(path, container.NewMarkerHeader("More", "Markers"), nil)
	require.NoError(t, err)
	require.Equal(t, uint32(5), id)
}

func TestAppendEvents_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := AppendEvents(filepath.Join(dir, "missing.xdf"), "h", nil)
	require.ErrorIs(t, err, os.ErrNotExist)

	packed, err := compress.Compress(compress.NewZstdCodec(), session())
	require.NoError(t, err)
	zpath := filepath.Join(dir, "session.xdfz")
	require.NoError(t, os.WriteFile(zpath, packed, 0o600))
	_, err = AppendEvents(zpath, "h", []container.Event{{Text: "x"}})
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)

	after, err := os.ReadFile(zpath)
	require.NoError(t, err)
	require.Equal(t, packed, after, "compressed file must be untouched")

	bad := filepath.Join(dir, "bad.xdf")
	require.NoError(t, os.WriteFile(bad, []byte("XDF:\x09"), 0o600))
	_, err = AppendEvents(bad, "h", nil)
	require.ErrorIs(t, err, errs.ErrInvalidLengthIndicator)
}

package container

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/xdf/encoding"
	"github.com/arloliu/xdf/endian"
	"github.com/arloliu/xdf/format"
	"github.com/arloliu/xdf/internal/xdftest"
)

func TestWriteEvents_Layout(t *testing.T) {
	header := NewMarkerHeader("Notes", "Markers")
	events := []Event{{Text: "hello", Timestamp: 1.5}, {Text: "", Timestamp: 2}}

	var buf bytes.Buffer
	n, err := WriteEvents(&buf, 9, header, events)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	engine := endian.GetLittleEndianEngine()
	data := buf.Bytes()

	// StreamHeader chunk
	require.Equal(t, byte(4), data[0])
	headerLen := engine.Uint32(data[1:])
	require.Equal(t, uint32(2+4+len(header)), headerLen)
	require.Equal(t, uint16(format.TagStreamHeader), engine.Uint16(data[5:]))
	require.Equal(t, uint32(9), engine.Uint32(data[7:]))
	require.Equal(t, header, string(data[11:11+len(header)]))

	// Samples chunk
	s := data[1+4+int(headerLen):]
	require.Equal(t, byte(4), s[0])
	samplesLen := engine.Uint32(s[1:])
	want := 2 + 4 + 1 + 4 + (1 + 8 + 1 + 4 + 5) + (1 + 8 + 1 + 4 + 0)
	require.Equal(t, uint32(want), samplesLen)
	require.Len(t, s, 1+4+int(samplesLen))
	require.Equal(t, uint16(format.TagSamples), engine.Uint16(s[5:]))
	require.Equal(t, uint32(9), engine.Uint32(s[7:]))
	require.Equal(t, byte(encoding.LengthWidth4), s[11])
	require.Equal(t, uint32(2), engine.Uint32(s[12:]))
}

func TestWriteEvents_RoundTrip(t *testing.T) {
	base := xdftest.New().
		FileHeader(xdftest.FileHeaderXML("1.0")).
		StreamHeader(1, xdftest.StreamHeaderXML("eeg", "EEG", 1, 100, "float32")).
		Samples(1, xdftest.Record(xdftest.TS(100), xdftest.F32(1))).
		Bytes()

	original := decode(t, base)
	header := NewMarkerHeader("User <annotations> & more", "Markers")
	events := []Event{
		{Text: "onset", Timestamp: 100.25},
		{Text: "ünïcødé", Timestamp: 100.5},
		{Text: strings.Repeat("x", 300), Timestamp: 101},
		{Text: "onset", Timestamp: 99.75},
	}

	var buf bytes.Buffer
	buf.Write(base)
	_, err := WriteEvents(&buf, original.NextStreamID(), header, events)
	require.NoError(t, err)

	f := decode(t, buf.Bytes())
	require.Len(t, f.Streams, 2)

	markers := f.Streams[1]
	require.Equal(t, uint32(2), markers.ID)
	require.Equal(t, "User <annotations> & more", markers.Info.Name)
	require.Equal(t, format.FormatString, markers.Info.ChannelFormat)
	require.Equal(t, header, markers.Info.RawHeader)
	require.Equal(t, len(events), markers.SampleCount())

	require.Len(t, f.Events, len(events))
	for i, e := range f.Events {
		require.Equal(t, events[i].Text, e.Text)
		require.Equal(t, events[i].Timestamp, e.Timestamp)
		require.Equal(t, 1, e.StreamIndex)
	}

	f.LoadDictionary()
	require.Equal(t, []int{0, 1, 2, 0}, f.EventType)
}

func TestWriteEvents_ReuseRawHeader(t *testing.T) {
	raw := xdftest.StreamHeaderXML("Markers", "Markers", 1, 0, "string")
	base := xdftest.New().StreamHeader(4, raw).Bytes()
	original := decode(t, base)

	var buf bytes.Buffer
	buf.Write(base)
	_, err := WriteEvents(&buf, original.NextStreamID(), original.Streams[0].Info.RawHeader, []Event{{Text: "a", Timestamp: 1}})
	require.NoError(t, err)

	f := decode(t, buf.Bytes())
	require.Equal(t, uint32(5), f.Streams[1].ID)
	require.Equal(t, raw, f.Streams[1].Info.RawHeader)
	require.Equal(t, []Event{{Text: "a", Timestamp: 1, StreamIndex: 1}}, f.Events)
}

func TestWriteEvents_Empty(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	_, err := WriteEvents(&buf, 1, NewMarkerHeader("m", "Markers"), nil)
	require.NoError(t, err)

	f := decode(t, buf.Bytes())
	require.Len(t, f.Streams, 1)
	require.Empty(t, f.Events)
}

func TestNextStreamID(t *testing.T) {
	require.Equal(t, uint32(1), newFile().NextStreamID())
	require.Equal(t, uint32(8), fileOf(newStream(0, 3), newStream(1, 7)).NextStreamID())
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, bytes.ErrTooLarge }

func TestWriteEvents_WriteError(t *testing.T) {
	_, err := WriteEvents(errWriter{}, 1, "h", []Event{{Text: "x"}})
	require.ErrorIs(t, err, bytes.ErrTooLarge)
}

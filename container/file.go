package container

import (
	"math"

	"github.com/arloliu/xdf/format"
)

// File is the in-memory model of one decoded XDF container.
//
// A File is produced by Decoder.Decode and is complete only after the whole
// container has been read. Post-processing passes (Synchronize,
// LoadDictionary, ComputeStatistics) mutate it in place.
//
// Note: File is NOT thread-safe.
type File struct {
	// Version is the container format version from the file header.
	Version float64
	// RawHeader is the file header XML, verbatim.
	RawHeader string

	// Streams holds every stream in first-reference order. Streams[i].Index == i.
	Streams []*Stream
	// Events is the global event log in file order.
	Events []Event

	// Dictionary interns event texts; nil until LoadDictionary runs.
	Dictionary *Dictionary
	// EventType[i] is the dictionary id of Events[i].
	EventType []int

	// Stats holds the derived statistics; zero until ComputeStatistics runs.
	Stats Statistics

	// Chunks counts the chunks seen per tag.
	Chunks ChunkCounts

	registry     *registry
	synchronized bool
}

// ChunkCounts tallies the chunks read during decoding.
type ChunkCounts struct {
	FileHeader   int
	StreamHeader int
	Samples      int
	ClockOffset  int
	Boundary     int
	StreamFooter int
	// Unknown counts chunks with a tag outside 1..6; their payload is skipped.
	Unknown int
	// SkippedSamples counts Samples chunks that could not be decoded because
	// their stream had no usable header at that point.
	SkippedSamples int
}

// Total returns the number of chunks read.
func (c ChunkCounts) Total() int {
	return c.FileHeader + c.StreamHeader + c.Samples + c.ClockOffset +
		c.Boundary + c.StreamFooter + c.Unknown
}

// Stream is one independently clocked channel group.
type Stream struct {
	// Index is the internal index, stable for the lifetime of the File.
	Index int
	// ID is the stream id declared in the container.
	ID uint32

	Info StreamInfo

	// SamplingInterval is 1/NominalSrate, or 0 for irregular streams.
	SamplingInterval float64

	// TimeSeries holds one row per channel; all rows have equal length.
	// Empty for string streams.
	TimeSeries [][]float64
	// Timestamps holds one timestamp per sample row.
	Timestamps []float64

	// ClockTimes and ClockValues are the parallel (collection time, offset)
	// pairs of the ClockOffset chunks, in file order.
	ClockTimes  []float64
	ClockValues []float64

	Footer Footer

	// EffectiveSrate is valid only if HasEffectiveSrate is set.
	EffectiveSrate    float64
	HasEffectiveSrate bool

	lastTimestamp float64
	headerSeen    bool
	eventCount    int
}

// StreamInfo is the stream header metadata.
type StreamInfo struct {
	Name          string
	Type          string
	ChannelCount  int
	NominalSrate  float64
	ChannelFormat format.ChannelFormat
	// FormatName is the channel_format text as written, kept for reporting
	// formats this package does not recognize.
	FormatName    string
	SourceID      string
	Version       float64
	CreatedAt     float64
	UID           string
	SessionID     string
	Hostname      string
	V4Address     string
	V4DataPort    int
	V4ServicePort int
	V6Address     string
	V6DataPort    int
	V6ServicePort int

	Channels []ChannelDesc
	// Desc is the raw inner XML of the desc element.
	Desc string
	// RawHeader is the stream header XML, verbatim.
	RawHeader string
}

// ChannelDesc describes one channel from desc/channels/channel.
type ChannelDesc struct {
	Label string
	Unit  string
	Type  string
}

// Footer holds the stream footer fields.
//
// FirstTimestamp and LastTimestamp are NaN until a footer or the
// synchronization pass provides them.
type Footer struct {
	FirstTimestamp float64
	LastTimestamp  float64
	SampleCount    int
	MeasuredSrate  float64
	// Seen reports whether a StreamFooter chunk was read.
	Seen bool
}

// Event is one string sample routed to the global event log.
type Event struct {
	Text        string
	Timestamp   float64
	StreamIndex int
}

func newFile() *File {
	f := &File{}
	f.registry = newRegistry(f)

	return f
}

func newStream(index int, id uint32) *Stream {
	return &Stream{
		Index: index,
		ID:    id,
		Footer: Footer{
			FirstTimestamp: math.NaN(),
			LastTimestamp:  math.NaN(),
		},
	}
}

// StreamByID returns the stream with the given container id.
func (f *File) StreamByID(id uint32) (*Stream, bool) {
	if f.registry == nil {
		return nil, false
	}

	return f.registry.lookup(id)
}

// IsString reports whether samples of this stream go to the event log.
func (s *Stream) IsString() bool {
	return s.Info.ChannelFormat == format.FormatString
}

// SampleCount returns the number of decoded sample rows, or the number of
// events for string streams.
func (s *Stream) SampleCount() int {
	if s.IsString() {
		return s.eventCount
	}

	return len(s.Timestamps)
}

// HeaderSeen reports whether a StreamHeader chunk was read for this stream.
func (s *Stream) HeaderSeen() bool {
	return s.headerSeen
}

// Synchronized reports whether clock offsets have been applied.
func (f *File) Synchronized() bool {
	return f.synchronized
}

package format

type (
	// ChannelFormat is the value type of every channel in a stream.
	ChannelFormat uint8
	// Tag identifies the semantics of a container chunk.
	Tag uint16
	// CompressionType identifies the whole-file compression of a container.
	CompressionType uint8
)

const (
	FormatUndefined ChannelFormat = iota // FormatUndefined is used before a StreamHeader has been seen.
	FormatFloat32                        // FormatFloat32 is a 4-byte IEEE-754 single.
	FormatDouble64                       // FormatDouble64 is an 8-byte IEEE-754 double.
	FormatInt8                           // FormatInt8 is a 1-byte two's complement integer.
	FormatInt16                          // FormatInt16 is a 2-byte little-endian two's complement integer.
	FormatInt32                          // FormatInt32 is a 4-byte little-endian two's complement integer.
	FormatInt64                          // FormatInt64 is an 8-byte little-endian two's complement integer.
	FormatString                         // FormatString routes samples to the event log.
)

const (
	TagFileHeader   Tag = 1 // TagFileHeader carries the file-level XML header.
	TagStreamHeader Tag = 2 // TagStreamHeader carries a stream id and the stream XML header.
	TagSamples      Tag = 3 // TagSamples carries a stream id and a run of sample records.
	TagClockOffset  Tag = 4 // TagClockOffset carries a stream id, a collection time and an offset.
	TagBoundary     Tag = 5 // TagBoundary is an opaque seek marker.
	TagStreamFooter Tag = 6 // TagStreamFooter carries a stream id and the stream XML footer.
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents a plain container.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents a Zstandard compressed container.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents an S2 compressed container.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents an LZ4 compressed container.
)

var channelFormatNames = map[string]ChannelFormat{
	"float32":  FormatFloat32,
	"double64": FormatDouble64,
	"int8":     FormatInt8,
	"int16":    FormatInt16,
	"int32":    FormatInt32,
	"int64":    FormatInt64,
	"string":   FormatString,
}

// ParseChannelFormat resolves the channel_format text of a stream header.
// The second return value is false for unknown names.
func ParseChannelFormat(name string) (ChannelFormat, bool) {
	f, ok := channelFormatNames[name]
	return f, ok
}

// Width returns the encoded byte width of one value, or 0 for string and
// undefined formats.
func (f ChannelFormat) Width() int {
	switch f {
	case FormatInt8:
		return 1
	case FormatInt16:
		return 2
	case FormatFloat32, FormatInt32:
		return 4
	case FormatDouble64, FormatInt64:
		return 8
	default:
		return 0
	}
}

// IsNumeric reports whether samples of this format go into a time series.
func (f ChannelFormat) IsNumeric() bool {
	return f.Width() > 0
}

func (f ChannelFormat) String() string {
	switch f {
	case FormatFloat32:
		return "float32"
	case FormatDouble64:
		return "double64"
	case FormatInt8:
		return "int8"
	case FormatInt16:
		return "int16"
	case FormatInt32:
		return "int32"
	case FormatInt64:
		return "int64"
	case FormatString:
		return "string"
	default:
		return "undefined"
	}
}

func (t Tag) String() string {
	switch t {
	case TagFileHeader:
		return "FileHeader"
	case TagStreamHeader:
		return "StreamHeader"
	case TagSamples:
		return "Samples"
	case TagClockOffset:
		return "ClockOffset"
	case TagBoundary:
		return "Boundary"
	case TagStreamFooter:
		return "StreamFooter"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

package http3

// StreamType is the leading byte of a unidirectional stream, classifying it
// per spec.md §4.E/§6. The wire values match the teacher's own
// StreamType constants (conn.go's handleIncomingUniStream switch).
type StreamType uint64

const (
	StreamTypeControl      StreamType = 0x43 // 'C'
	StreamTypeQPACKEncoder StreamType = 0x48 // 'H'
	StreamTypeQPACKDecoder StreamType = 0x68 // 'h'
)

func (t StreamType) String() string {
	switch t {
	case StreamTypeControl:
		return "control stream"
	case StreamTypeQPACKEncoder:
		return "QPACK encoder stream"
	case StreamTypeQPACKDecoder:
		return "QPACK decoder stream"
	default:
		return "unknown stream type"
	}
}

// FrameType identifies a frame read by the frame codec (http3/frame.go).
type FrameType uint64

const (
	FrameTypeData     FrameType = 0x0
	FrameTypeHeaders  FrameType = 0x1
	FrameTypeSettings FrameType = 0x4
)

func (t FrameType) String() string {
	switch t {
	case FrameTypeData:
		return "DATA"
	case FrameTypeHeaders:
		return "HEADERS"
	case FrameTypeSettings:
		return "SETTINGS"
	default:
		return "unknown frame type"
	}
}

// SettingID identifies a SETTINGS (id, value) pair per spec.md §4.A/§6.
type SettingID uint16

const (
	// SettingHeaderTableSize is the only recognized SETTINGS id in this
	// profile; all others are ignored (spec.md §4.A).
	SettingHeaderTableSize SettingID = 1
)

// DefaultHeaderTableSize is used when the peer's SETTINGS frame doesn't
// carry a HEADER_TABLE_SIZE value (spec.md §4.A).
const DefaultHeaderTableSize = 4096

// maxNonDataFrameLength is the 16384-byte ceiling spec.md §4.A/§6 imposes
// on every frame type other than DATA.
const maxNonDataFrameLength = 16384

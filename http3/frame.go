package http3

import (
	"errors"

	"github.com/saitolume/h3mux/quicvarint"
)

// ErrIncomplete is the internal-only sentinel spec.md §4.A/§6/§7 calls
// INCOMPLETE: the caller has fewer bytes buffered than a frame header or
// payload needs, and should retry once more bytes arrive. It is never
// surfaced to the transport as a connection error.
var ErrIncomplete = errors.New("http3: incomplete frame")

// Frame is the decoded result of ReadFrame: a varint length, a one-byte
// type, and (for non-DATA frames) the payload slice. Payload aliases src;
// callers that need to retain it past the next splice must copy it.
type Frame struct {
	Type       FrameType
	Length     uint64
	HeaderSize int
	Payload    []byte
}

// ReadFrame decodes a single frame header (and, for non-DATA frames, its
// payload) from the front of src, per spec.md §4.A:
//
//   - a truncated length varint or a missing type byte returns ErrIncomplete
//   - any type other than DATA must declare length < 16384, else a
//     *FrameLengthError (MALFORMED)
//   - for non-DATA frames, returns ErrIncomplete until length payload bytes
//     are available
//   - DATA's payload is never consumed here; the HTTP body layer streams it
//
// consumed reports how many bytes of src the caller should advance past:
// header+payload for non-DATA frames, header only for DATA.
//
// ReadFrame is a pure function of src: extending src can only turn an
// ErrIncomplete result into a decode, never change an already-successful
// one (the monotonicity property spec.md §8 requires).
func ReadFrame(src []byte) (frame Frame, consumed int, err error) {
	length, headerSize, ok := quicvarint.Peek(src)
	if !ok {
		return Frame{}, 0, ErrIncomplete
	}
	if headerSize >= len(src) {
		return Frame{}, 0, ErrIncomplete
	}
	typ := FrameType(src[headerSize])
	headerSize++

	if typ == FrameTypeData {
		return Frame{Type: typ, Length: length, HeaderSize: headerSize}, headerSize, nil
	}

	if length >= maxNonDataFrameLength {
		return Frame{}, 0, &FrameLengthError{Type: typ, Len: length, Max: maxNonDataFrameLength - 1}
	}
	if uint64(len(src)-headerSize) < length {
		return Frame{}, 0, ErrIncomplete
	}
	payload := src[headerSize : headerSize+int(length)]
	return Frame{Type: typ, Length: length, HeaderSize: headerSize, Payload: payload}, headerSize + int(length), nil
}

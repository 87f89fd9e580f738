package http3

import "fmt"

// ApplicationErrorCode is the wire type for a QUIC application-level error
// code, the type the transport collaborator uses to close streams and
// connections (see Transport.CloseWithError / ReceiveHandle.StopSending in
// transport.go).
type ApplicationErrorCode uint64

type errorCode ApplicationErrorCode

// The numeric values and names below are fixed by the HTTP/3 error-code
// registry (draft-ietf-quic-http §8.1). The table covers the whole
// 0x100..0x110 range, including the request/response-layer codes
// (REQUEST_REJECTED..VERSION_FALLBACK) that this package never raises on its
// own; extension codes (e.g. WebTransport's) are not listed.
const (
	errorNoError              errorCode = 0x100
	errorGeneralProtocolError errorCode = 0x101
	errorInternalError        errorCode = 0x102
	errorStreamCreationError  errorCode = 0x103
	errorClosedCriticalStream errorCode = 0x104
	errorFrameUnexpected      errorCode = 0x105
	errorFrameError           errorCode = 0x106
	errorExcessiveLoad        errorCode = 0x107
	errorIDError              errorCode = 0x108
	errorSettingsError        errorCode = 0x109
	errorMissingSettings      errorCode = 0x10a
	errorRequestRejected      errorCode = 0x10b
	errorRequestCanceled      errorCode = 0x10c
	errorRequestIncomplete    errorCode = 0x10d
	errorMessageError         errorCode = 0x10e
	errorConnectError         errorCode = 0x10f
	errorVersionFallback      errorCode = 0x110

	// errorUnknownStreamType is this profile's STOP_SENDING code for a
	// unidirectional stream whose leading type byte isn't recognized
	// (spec.md §4.E unknown_type, §6).
	errorUnknownStreamType errorCode = errorStreamCreationError
)

// errorCodeNames backs String() with a lookup table rather than a switch,
// since the mapping is pure data — one name per registry entry above.
var errorCodeNames = map[errorCode]string{
	errorNoError:              "H3_NO_ERROR",
	errorGeneralProtocolError: "H3_GENERAL_PROTOCOL_ERROR",
	errorInternalError:        "H3_INTERNAL_ERROR",
	errorStreamCreationError:  "H3_STREAM_CREATION_ERROR",
	errorClosedCriticalStream: "H3_CLOSED_CRITICAL_STREAM",
	errorFrameUnexpected:      "H3_FRAME_UNEXPECTED",
	errorFrameError:           "H3_FRAME_ERROR",
	errorExcessiveLoad:        "H3_EXCESSIVE_LOAD",
	errorIDError:              "H3_ID_ERROR",
	errorSettingsError:        "H3_SETTINGS_ERROR",
	errorMissingSettings:      "H3_MISSING_SETTINGS",
	errorRequestRejected:      "H3_REQUEST_REJECTED",
	errorRequestCanceled:      "H3_REQUEST_CANCELLED",
	errorRequestIncomplete:    "H3_INCOMPLETE_REQUEST",
	errorMessageError:         "H3_MESSAGE_ERROR",
	errorConnectError:         "H3_CONNECT_ERROR",
	errorVersionFallback:      "H3_VERSION_FALLBACK",
}

func (e errorCode) String() string {
	if name, ok := errorCodeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("unknown error code: %#x", uint64(e))
}

// MalformedFrameError is MALFORMED_FRAME(type) from spec.md §6/§7: a frame
// that's structurally fine but forbidden in context — DATA on the control
// stream, or a second SETTINGS frame.
type MalformedFrameError struct {
	Type FrameType
}

func (err *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed frame: unexpected %s on control stream", err.Type)
}

var _ error = &MalformedFrameError{}

// MalformedSettingsError is returned by handleSettings on truncation or
// varint overflow while parsing SETTINGS pairs (spec.md §4.A).
type MalformedSettingsError struct {
	Reason string
}

func (err *MalformedSettingsError) Error() string {
	return fmt.Sprintf("malformed SETTINGS: %s", err.Reason)
}

var _ error = &MalformedSettingsError{}

// ClosedCriticalStreamError is the connection-level error spec.md §4.E/§7
// requires whenever a critical (control or QPACK) unidirectional stream is
// reset or stopped by the peer.
type ClosedCriticalStreamError struct {
	StreamType StreamType
}

func (err *ClosedCriticalStreamError) Error() string {
	return fmt.Sprintf("closed critical stream: %s", err.StreamType)
}

var _ error = &ClosedCriticalStreamError{}

// FrameTypeError describes an unexpected frame read on a stream that only
// tolerates one kind. Want is the frame type the stream was expecting; Type
// is what actually arrived. No code path in this package returns it; DATA on
// the control stream is reported as a MalformedFrameError.
type FrameTypeError struct {
	Want FrameType
	Type FrameType
}

func (err *FrameTypeError) Error() string {
	return fmt.Sprintf("unexpected frame type %s, expected %s", err.Type, err.Want)
}

var _ error = &FrameTypeError{}

// FrameLengthError is returned when a non-DATA frame's declared length
// meets or exceeds the 16384-byte ceiling spec.md §4.A/§6 imposes.
type FrameLengthError struct {
	Type FrameType
	Len  uint64
	Max  uint64
}

func (err *FrameLengthError) Error() string {
	return fmt.Sprintf("%s frame too large: %d bytes (max: %d)", err.Type, err.Len, err.Max)
}

var _ error = &FrameLengthError{}

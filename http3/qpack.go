package http3

import (
	"bytes"
	"io"

	"github.com/marten-seemann/qpack"
)

// qpackBlockedStreamsLimit is this profile's fixed blocked-streams limit
// (spec.md §4.H step 2, §9 open question c). Nothing in this package reads
// it: NewQPACKDecoder does not pass it to the decoder, and the SETTINGS
// frame sent at Setup does not carry it.
//
// TODO(open question c, spec.md §9): this should probably be configurable
// per Context rather than a package constant.
const qpackBlockedStreamsLimit = 100

// QPACKDecoder is this connection's decoder role: it decodes header blocks
// on request streams (out of scope for this core — the HTTP layer owns
// that, per spec.md §1) and consumes the peer's QPACK-encoder-stream
// instructions. It is created unconditionally by InitConn, before Setup
// (spec.md §3/§4.H).
type QPACKDecoder struct {
	dec *qpack.Decoder
}

// NewQPACKDecoder creates the connection's decoder with the default
// header-table size (spec.md §4.H step 2).
func NewQPACKDecoder() *QPACKDecoder {
	return &QPACKDecoder{dec: qpack.NewDecoder(nil)}
}

// FeedEncoderStream consumes bytes read off the ingress QPACK-encoder
// stream (spec.md §4.E "qpack_encoder" handler). It returns the request
// stream IDs newly unblocked by the inserts these bytes perform.
//
// TODO(open question a, spec.md §9): unblocked-stream notification isn't
// wired to the HTTP layer; this always returns a nil ID list. The
// interface point exists (the return value) so a caller can fill it in.
func (d *QPACKDecoder) FeedEncoderStream(data []byte) (unblocked []uint64, err error) {
	if _, err := d.dec.Write(data); err != nil {
		return nil, err
	}
	return nil, nil
}

// QPACKEncoder is this connection's encoder role, created lazily once
// SETTINGS has been received from the peer (spec.md §3: "a QPACK encoder
// (created lazily after SETTINGS is received)").
type QPACKEncoder struct {
	enc *qpack.Encoder
	buf *bytes.Buffer

	// pending carries a decoder-stream instruction byte sequence that
	// FeedDecoderStream couldn't fully parse yet (spec.md §4.B's
	// "contiguous prefix" framing applies here too).
	pending []byte

	sectionAcks         int
	streamCancellations  int
	insertCountIncrements int
}

// NewQPACKEncoder creates the connection's encoder with the peer's
// negotiated HEADER_TABLE_SIZE (spec.md §4.A handle_settings:
// "Create the QPACK encoder with the negotiated table size").
func NewQPACKEncoder(tableSize uint64) *QPACKEncoder {
	buf := &bytes.Buffer{}
	enc := qpack.NewEncoder(buf)
	enc.SetMaxDynamicTableSize(tableSize)
	return &QPACKEncoder{enc: enc, buf: buf}
}

// FeedDecoderStream consumes bytes read off the ingress QPACK-decoder
// stream (spec.md §4.E "qpack_decoder" handler): header
// acknowledgements, stream cancellations, and insert-count increments
// (RFC 9204 §4.4). The core treats the encoder's dynamic-table bookkeeping
// as opaque (spec.md §1); this only classifies and counts instructions, it
// doesn't mutate table state itself.
func (e *QPACKEncoder) FeedDecoderStream(data []byte) error {
	buf := append(e.pending, data...)
	pos := 0
	for pos < len(buf) {
		first := buf[pos]
		var prefixBits int
		switch {
		case first&0x80 != 0: // 1xxxxxxx: Section Acknowledgement
			prefixBits = 7
		case first&0x40 != 0: // 01xxxxxx: Stream Cancellation
			prefixBits = 6
		default: // 00xxxxxx: Insert Count Increment
			prefixBits = 6
		}
		val, n, ok := decodePrefixInt(buf[pos:], prefixBits)
		if !ok {
			break
		}
		switch {
		case first&0x80 != 0:
			e.sectionAcks++
			_ = val
		case first&0x40 != 0:
			e.streamCancellations++
			_ = val
		default:
			e.insertCountIncrements++
			_ = val
		}
		pos += n
	}
	e.pending = append([]byte(nil), buf[pos:]...)
	return nil
}

// Close releases the decoder, if the underlying qpack.Decoder supports it
// (spec.md §4.H dispose step 1: "Destroy QPACK encoder/decoder if
// present").
func (d *QPACKDecoder) Close() error {
	if c, ok := interface{}(d.dec).(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Close releases the encoder, if the underlying qpack.Encoder supports it.
func (e *QPACKEncoder) Close() error {
	if c, ok := interface{}(e.enc).(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// decodePrefixInt decodes an RFC 7541 §5.1-style prefix integer (reused by
// QPACK, RFC 9204 §4.1.1) with the given prefix width, returning the value,
// the number of bytes consumed, and whether b held a complete encoding.
func decodePrefixInt(b []byte, prefixBits int) (value uint64, consumed int, ok bool) {
	if len(b) == 0 {
		return 0, 0, false
	}
	mask := byte(1<<uint(prefixBits) - 1)
	value = uint64(b[0] & mask)
	if value < uint64(mask) {
		return value, 1, true
	}
	shift := uint(0)
	i := 1
	for {
		if i >= len(b) {
			return 0, 0, false
		}
		bi := b[i]
		value += uint64(bi&0x7f) << shift
		i++
		shift += 7
		if bi&0x80 == 0 {
			break
		}
	}
	return value, i, true
}

// writeStreamCancellation encodes RFC 9204's Stream Cancellation
// instruction (pattern 01, 6-bit prefix integer) for streamID into w, for
// Conn.SendQPACKStreamCancel (spec.md §4.E helper).
func writeStreamCancellation(w io.Writer, streamID uint64) error {
	return writePrefixInt(w, 0x40, 6, streamID)
}

func writePrefixInt(w io.Writer, patternBits byte, prefixBits int, value uint64) error {
	mask := uint64(1<<uint(prefixBits) - 1)
	if value < mask {
		_, err := w.Write([]byte{patternBits | byte(value)})
		return err
	}
	out := []byte{patternBits | byte(mask)}
	value -= mask
	for value >= 0x80 {
		out = append(out, byte(value&0x7f)|0x80)
		value >>= 7
	}
	out = append(out, byte(value))
	_, err := w.Write(out)
	return err
}

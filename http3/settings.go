package http3

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/saitolume/h3mux/quicvarint"
)

// Settings holds the (id, value) pairs of a SETTINGS frame (spec.md §4.A
// /§6). Only SettingHeaderTableSize is interpreted; unrecognized ids are
// kept so they round-trip, but never acted on.
type Settings map[SettingID]uint64

// HeaderTableSize returns the negotiated QPACK dynamic table size, or
// DefaultHeaderTableSize if the peer didn't send one.
func (s Settings) HeaderTableSize() uint64 {
	if v, ok := s[SettingHeaderTableSize]; ok {
		return v
	}
	return DefaultHeaderTableSize
}

func (s Settings) encodePairs() []byte {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, int(id))
	}
	sort.Ints(ids) // deterministic wire encoding regardless of map iteration order

	buf := &bytes.Buffer{}
	for _, id := range ids {
		binary.Write(buf, binary.BigEndian, uint16(id)) //nolint:errcheck // bytes.Buffer never errors
		quicvarint.Write(buf, s[SettingID(id)])          //nolint:errcheck
	}
	return buf.Bytes()
}

// WriteFrame writes this Settings as a SETTINGS frame (varint length, type
// byte 0x04, then the encoded pairs) to w.
func (s Settings) WriteFrame(w io.Writer) error {
	body := s.encodePairs()
	vw := quicvarint.NewWriter(w)
	if err := quicvarint.Write(vw, uint64(len(body))); err != nil {
		return err
	}
	if err := vw.WriteByte(byte(FrameTypeSettings)); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

// ParseSettings decodes a SETTINGS frame payload into Settings, per spec.md
// §4.A: pairs of (id:u16, value:varint); any truncation or varint overflow
// is a *MalformedSettingsError.
func ParseSettings(payload []byte) (Settings, error) {
	s := make(Settings)
	r := bytes.NewReader(payload)
	for r.Len() > 0 {
		if r.Len() < 2 {
			return nil, &MalformedSettingsError{Reason: "truncated setting id"}
		}
		var id uint16
		if err := binary.Read(r, binary.BigEndian, &id); err != nil {
			return nil, &MalformedSettingsError{Reason: err.Error()}
		}
		val, err := quicvarint.Read(r)
		if err != nil {
			return nil, &MalformedSettingsError{Reason: "truncated or overflowing setting value"}
		}
		s[SettingID(id)] = val
	}
	return s, nil
}

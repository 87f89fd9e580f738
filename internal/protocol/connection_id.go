// Package protocol holds small value types shared across h3mux, mirroring
// the teacher's github.com/lucas-clemente/quic-go/internal/protocol package.
package protocol

import "fmt"

// ConnectionID is an opaque QUIC connection identifier. It is treated as a
// plain byte string for hashing and lookup purposes (see http3/acceptkey.go
// and http3/registry.go); only the QUIC transport that minted it knows how
// to decode a master-id out of it.
type ConnectionID []byte

func (c ConnectionID) String() string {
	if len(c) == 0 {
		return "(empty)"
	}
	return fmt.Sprintf("%x", []byte(c))
}

// Len returns the length of the connection ID in bytes.
func (c ConnectionID) Len() int { return len(c) }

// AddressFamily tags the wire representation used by http3/acceptkey.go's
// canonical tuple encoding.
type AddressFamily byte

const (
	AddressFamilyIPv4 AddressFamily = 4
	AddressFamilyIPv6 AddressFamily = 6
)

// ByteCount counts bytes sent or received; a distinct type from int avoids
// accidental arithmetic with unrelated counters, matching the teacher's own
// quic-go ByteCount convention.
type ByteCount int64

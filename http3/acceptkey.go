package http3

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"github.com/saitolume/h3mux/internal/protocol"
)

// acceptKey is the process-lifetime HMAC-SHA256 key spec.md §4.C/§9
// describes: generated once, lazily, from a cryptographically random seed,
// via a first-touch idempotent initializer (sync.Once is exactly the
// "one-shot primitive" §9 calls for).
var (
	acceptKeyOnce sync.Once
	acceptKey     [32]byte
)

func ensureAcceptKey() {
	acceptKeyOnce.Do(func() {
		if _, err := rand.Read(acceptKey[:]); err != nil {
			// The process has no usable source of randomness; there is no
			// safe way to continue serving connections.
			panic(fmt.Sprintf("h3mux: failed to seed accepting-key HMAC: %v", err))
		}
	})
}

// canonicalAcceptRecord lays out (address-family-byte, address-bytes,
// port-big-endian, cid-length-byte, cid-bytes) contiguously without padding,
// per spec.md §4.C. Only IPv4 and IPv6 are supported; any other address
// family is a fatal programmer error, since this hash is only ever derived
// from an address the UDP socket itself handed us.
func canonicalAcceptRecord(addr *net.UDPAddr, cid protocol.ConnectionID) []byte {
	var famByte byte
	var ipBytes []byte
	if ip4 := addr.IP.To4(); ip4 != nil {
		famByte = byte(protocol.AddressFamilyIPv4)
		ipBytes = ip4
	} else if ip16 := addr.IP.To16(); ip16 != nil {
		famByte = byte(protocol.AddressFamilyIPv6)
		ipBytes = ip16
	} else {
		panic(fmt.Sprintf("h3mux: unsupported address family for accepting-hash: %v", addr.IP))
	}
	if len(cid) > 0xff {
		panic(fmt.Sprintf("h3mux: connection ID too long for accepting-hash: %d bytes", len(cid)))
	}

	record := make([]byte, 0, 1+len(ipBytes)+2+1+len(cid))
	record = append(record, famByte)
	record = append(record, ipBytes...)
	var portBuf [2]byte
	binary.BigEndian.PutUint16(portBuf[:], uint16(addr.Port))
	record = append(record, portBuf[:]...)
	record = append(record, byte(len(cid)))
	record = append(record, cid...)
	return record
}

// AcceptingHash derives the 64-bit keyed hash of (peerAddr, offeredCID)
// used to probe the unauthenticated server-accept map (spec.md §4.C/§4.D).
// The truncation to 64 bits is host-endian: the value is only ever used as
// an in-process map key, never persisted or sent on the wire (spec.md §9).
func AcceptingHash(peerAddr *net.UDPAddr, offeredCID protocol.ConnectionID) uint64 {
	ensureAcceptKey()
	mac := hmac.New(sha256.New, acceptKey[:])
	mac.Write(canonicalAcceptRecord(peerAddr, offeredCID))
	sum := mac.Sum(nil)
	return binary.NativeEndian.Uint64(sum[:8])
}

package http3

import (
	"net"
	"time"

	"github.com/saitolume/h3mux/internal/protocol"
)

// Packet is a single decoded QUIC packet as produced by the transport's
// batch decoder (spec.md §3 "Decoded packet batch", §4.F).
type Packet interface {
	// DestConnectionID is the packet's destination connection ID, exactly
	// as it appeared on the wire.
	DestConnectionID() protocol.ConnectionID
	// IsClientGeneratedDestCID reports whether this packet's header type
	// (Initial/0-RTT) means the destination CID may be client-chosen,
	// i.e. it should be looked up via the accepting-hash path rather than
	// the authenticated master-id path (spec.md §4.D step 1 vs step 2).
	IsClientGeneratedDestCID() bool
	// SourceAddr is the peer address the datagram carrying this packet
	// arrived from.
	SourceAddr() *net.UDPAddr
	// DecodedIdentity is the transport's authenticated decode of this
	// packet's destination CID into (masterID, nodeID, threadID), per
	// spec.md §4.D step 2 / §5 / Glossary "Master-id". ok is false if the
	// CID isn't a validly-minted one (e.g. too short, wrong generation).
	// nodeID/threadID are the sharding hook spec.md §5 describes: a
	// single-shard registry only claims packets where both are zero.
	DecodedIdentity() (masterID uint64, nodeID, threadID uint16, ok bool)
}

// EgressSink is implemented by an egress unidirectional stream
// (http3/egress.go) and driven by the Transport whenever it's ready to
// hand bytes off to the network, per spec.md §4.E "Egress":
//
//   - Shift(delta) — the transport has durably handed off the first delta
//     bytes of the send buffer; drop them.
//   - Emit(offset, dst) — copy up to len(dst) bytes starting at offset from
//     the send buffer into dst, reporting how many bytes were written and
//     whether the request saturated the remaining buffer.
//   - Stop(err) — the stream was fatally stopped by the peer or transport;
//     yields CLOSED_CRITICAL_STREAM.
type EgressSink interface {
	Shift(delta int)
	Emit(offset int, dst []byte) (n int, wroteAll bool)
	Stop(err error)
}

// IngressSink is implemented by an ingress unidirectional stream
// (http3/ingress.go) and driven by the Transport on every receive event,
// per spec.md §4.E "Ingress":
//
//   - Receive(offset, data) — splice newly arrived bytes and run the
//     stream's current input handler over the contiguous prefix.
//   - ReceiveReset() — the peer reset this stream; yields
//     CLOSED_CRITICAL_STREAM for any discovered unistream in this profile.
type IngressSink interface {
	// Receive returns how many bytes were consumed from data (so the
	// transport can advance its own flow-control window, spec.md §4.E
	// step 4) and an error if the stream hit a protocol violation or was
	// finished by the peer (fin).
	Receive(offset int, data []byte, fin bool) (consumed int, err error)
	ReceiveReset() error
}

// ReceiveHandle is the transport-side handle an IngressSink can use to push
// back onto the stream — currently only to request STOP_SENDING when an
// unknown stream-type byte is seen (spec.md §4.E unknown_type).
type ReceiveHandle interface {
	StopSending(code ApplicationErrorCode)
}

// SendHandle is the transport-side handle returned from OpenUniStream; the
// core calls NotifyNewData whenever it has appended to an egress stream's
// send buffer, so the transport knows to re-drive EgressSink.Emit.
type SendHandle interface {
	NotifyNewData()
}

// UniStreamAcceptor is implemented by *Conn. The Transport calls
// HandleNewUniStream exactly once per peer-initiated unidirectional stream,
// handing the core a ReceiveHandle; the core hands back the IngressSink
// that should receive subsequent Receive/ReceiveReset calls (spec.md §4.E,
// "Ingress" lifecycle: "created by transport notification").
type UniStreamAcceptor interface {
	HandleNewUniStream(rh ReceiveHandle) IngressSink
}

// Transport is the per-connection QUIC engine handle the core drives and is
// driven by. It is the one collaborator interface spec.md §1 scopes
// entirely out of this module: packet decode, receive, stream open,
// send-buffer sync, next-deadline query, and teardown all live on the real
// QUIC implementation a caller supplies.
type Transport interface {
	// MasterID is the authenticated numeric identity embedded in this
	// connection's server-minted CIDs (spec.md §4.D, Glossary).
	MasterID() uint64
	// IsServer reports whether this is a server-side connection (only
	// server-side connections are registered in the accepting-hash map).
	IsServer() bool
	// OfferedCID is the destination CID this connection expects to see on
	// its own packets before any CID migration (used to derive and probe
	// the accepting-hash, spec.md §4.C/§4.D).
	OfferedCID() protocol.ConnectionID
	// PeerAddr is this connection's current peer address.
	PeerAddr() *net.UDPAddr
	// OwnsPacket confirms that pkt is actually destined for this
	// connection (spec.md §4.D: "confirm via the transport"), guarding
	// against accepting-hash or master-id collisions.
	OwnsPacket(pkt Packet) bool
	// Receive delivers a decoded packet to the transport for processing.
	Receive(pkt Packet) error
	// OpenUniStream opens a new egress unidirectional stream, registering
	// sink as its EgressSink.
	OpenUniStream(sink EgressSink) (SendHandle, error)
	// NextOutboundPackets asks the transport for up to max datagrams it
	// wants sent; short reports whether fewer than max were returned
	// (spec.md §4.G: "stop when a short batch is returned").
	NextOutboundPackets(max int) (packets [][]byte, short bool, err error)
	// CloseWithError tells the transport to close the connection with the
	// given application-level error code, per spec.md §7's disposition
	// for MALFORMED_FRAME/CLOSED_CRITICAL_STREAM: "surface to transport as
	// connection error."
	CloseWithError(code ApplicationErrorCode, reason string) error
	// FreeConnection reports whether the transport has finished tearing
	// down and the connection object may now be disposed.
	FreeConnection() bool
	// NextTimeout is the transport's next wake-up deadline.
	NextTimeout() time.Time
	// Close tears down the transport handle itself.
	Close() error
}

// EventLoop is the minimal timer facility spec.md §6 calls for: monotonic
// now, and link/unlink of a single per-connection timer. Abstracting it
// behind an interface (rather than calling time.AfterFunc directly) is what
// makes the "rescheduling with an unchanged deadline is a no-op" property
// (spec.md §8) independently testable without real time passing.
type EventLoop interface {
	Now() time.Time
	// Link arms a timer to fire onTimeout after d, returning a handle that
	// can be unlinked.
	Link(d time.Duration, onTimeout func()) TimerHandle
}

// TimerHandle is returned by EventLoop.Link.
type TimerHandle interface {
	Unlink()
}

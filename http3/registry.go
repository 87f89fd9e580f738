package http3

import (
	"net"
	"sync"
)

// Registry holds the two connection maps spec.md §3/§4.D describes,
// mirroring the teacher's own map-with-mutex idiom (conn.go's
// peerStreamsMutex/incomingStreamsMutex pattern), generalized from a
// per-connection map to the context-level registry the spec calls for.
type Registry struct {
	mu              sync.RWMutex
	byMasterID      map[uint64]*Conn
	byAcceptingHash map[uint64]*Conn
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byMasterID:      make(map[uint64]*Conn),
		byAcceptingHash: make(map[uint64]*Conn),
	}
}

// RegisterByID makes c reachable through the master-id map. Called once at
// Setup (spec.md §4.H step 3); the invariant in spec.md §3 is that a
// connection is reachable here iff it has been set up and not disposed.
func (r *Registry) RegisterByID(masterID uint64, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byMasterID[masterID] = c
}

// RegisterAccepting makes c reachable through the accepting-hash map.
// Server-side connections only (spec.md §4.H step 4).
//
// TODO(open question d, spec.md §9): this map is never pruned once the
// connection's CID is authenticated; entries live until Dispose removes
// them explicitly, rather than as soon as the Initial/0-RTT keys that
// justified the unauthenticated lookup are discarded.
func (r *Registry) RegisterAccepting(hash uint64, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byAcceptingHash[hash] = c
}

// UnregisterByID removes a connection from the master-id map (Dispose).
func (r *Registry) UnregisterByID(masterID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byMasterID, masterID)
}

// UnregisterAccepting removes a connection from the accepting-hash map
// (Dispose, server-side only).
func (r *Registry) UnregisterAccepting(hash uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byAcceptingHash, hash)
}

// Lookup implements spec.md §4.D's two-stage lookup:
//
//  1. If the packet's destination CID may be client-generated
//     (Initial/0-RTT), probe the accepting-hash map.
//  2. Else, if the packet's destination CID authenticates to this shard
//     (nodeID == threadID == 0), probe the master-id map.
//  3. Otherwise miss.
//
// A hit is only returned once Transport.OwnsPacket confirms the packet is
// actually destined for that connection, guarding against hash/id
// collisions.
func (r *Registry) Lookup(peerAddr *net.UDPAddr, pkt Packet) (*Conn, bool) {
	if pkt.IsClientGeneratedDestCID() {
		hash := AcceptingHash(peerAddr, pkt.DestConnectionID())
		r.mu.RLock()
		c, ok := r.byAcceptingHash[hash]
		r.mu.RUnlock()
		if ok && c.transport.OwnsPacket(pkt) {
			return c, true
		}
		return nil, false
	}

	masterID, nodeID, threadID, ok := pkt.DecodedIdentity()
	if !ok || nodeID != 0 || threadID != 0 {
		// TODO(open question b, spec.md §9): stateless-reset recognition
		// is not implemented; an unowned/undecodable CID is simply a miss.
		return nil, false
	}
	r.mu.RLock()
	c, ok2 := r.byMasterID[masterID]
	r.mu.RUnlock()
	if ok2 && c.transport.OwnsPacket(pkt) {
		return c, true
	}
	return nil, false
}

// Len reports the number of connections reachable by master-id, used by
// http3/debug.go's diagnostic snapshot.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byMasterID)
}

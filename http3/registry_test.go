package http3

import (
	"net"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/saitolume/h3mux/internal/protocol"
)

type fakePacket struct {
	destCID         protocol.ConnectionID
	clientGenerated bool
	masterID        uint64
	nodeID          uint16
	threadID        uint16
	decodeOK        bool
}

func (p *fakePacket) DestConnectionID() protocol.ConnectionID { return p.destCID }
func (p *fakePacket) IsClientGeneratedDestCID() bool { return p.clientGenerated }
func (p *fakePacket) SourceAddr() *net.UDPAddr       { return nil }
func (p *fakePacket) DecodedIdentity() (uint64, uint16, uint16, bool) {
	return p.masterID, p.nodeID, p.threadID, p.decodeOK
}

var _ Packet = (*fakePacket)(nil)

var _ = Describe("Registry", func() {
	var (
		reg  *Registry
		conn *Conn
		tr   *fakeTransport
		addr *net.UDPAddr
	)

	BeforeEach(func() {
		reg = NewRegistry()
		conn, tr = newTestConn()
		addr = &net.UDPAddr{IP: net.ParseIP("198.51.100.9"), Port: 9000}
	})

	It("finds a connection by authenticated master-id", func() {
		reg.RegisterByID(42, conn)
		pkt := &fakePacket{masterID: 42, decodeOK: true}
		got, ok := reg.Lookup(addr, pkt)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(conn))
	})

	It("misses a master-id lookup when the transport doesn't confirm ownership", func() {
		tr.denyOwnership = true
		reg.RegisterByID(42, conn)
		pkt := &fakePacket{masterID: 42, decodeOK: true}
		_, ok := reg.Lookup(addr, pkt)
		Expect(ok).To(BeFalse())
	})

	It("misses when nodeID/threadID aren't this shard's (0,0)", func() {
		reg.RegisterByID(42, conn)
		pkt := &fakePacket{masterID: 42, nodeID: 1, decodeOK: true}
		_, ok := reg.Lookup(addr, pkt)
		Expect(ok).To(BeFalse())
	})

	It("finds a connection by accepting-hash for a client-generated dest CID", func() {
		cid := []byte{9, 9, 9}
		hash := AcceptingHash(addr, cid)
		reg.RegisterAccepting(hash, conn)
		pkt := &fakePacket{destCID: cid, clientGenerated: true}
		got, ok := reg.Lookup(addr, pkt)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(conn))
	})

	It("no longer finds a connection once unregistered", func() {
		reg.RegisterByID(42, conn)
		reg.UnregisterByID(42)
		pkt := &fakePacket{masterID: 42, decodeOK: true}
		_, ok := reg.Lookup(addr, pkt)
		Expect(ok).To(BeFalse())
		Expect(reg.Len()).To(Equal(0))
	})
})

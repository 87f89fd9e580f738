package http3

import (
	"net"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/saitolume/h3mux/internal/utils"
)

var _ = Describe("Egress unistream", func() {
	var (
		conn *Conn
		tr   *fakeTransport
		e    *EgressStream
	)

	BeforeEach(func() {
		conn, tr = newTestConn()
		e = newEgressStream(conn, StreamTypeControl)
		_ = tr
	})

	It("emits from the send buffer without consuming it", func() {
		e.append([]byte("hello world"))
		dst := make([]byte, 5)
		n, wroteAll := e.Emit(0, dst)
		Expect(n).To(Equal(5))
		Expect(string(dst)).To(Equal("hello"))
		Expect(wroteAll).To(BeFalse())
		// Still fully present until Shift is called.
		n2, wroteAll2 := e.Emit(0, make([]byte, 32))
		Expect(n2).To(Equal(11))
		Expect(wroteAll2).To(BeTrue())
	})

	It("drops durably-sent bytes on Shift", func() {
		e.append([]byte("hello world"))
		e.Shift(6)
		dst := make([]byte, 32)
		n, wroteAll := e.Emit(0, dst)
		Expect(string(dst[:n])).To(Equal("world"))
		Expect(wroteAll).To(BeTrue())
	})

	It("reports wroteAll=true for an offset past the end of the buffer", func() {
		e.append([]byte("abc"))
		n, wroteAll := e.Emit(10, make([]byte, 4))
		Expect(n).To(Equal(0))
		Expect(wroteAll).To(BeTrue())
	})

	It("fails the connection with CLOSED_CRITICAL_STREAM on Stop", func() {
		e.Stop(nil)
		Expect(tr.closedCode).NotTo(BeNil())
		Expect(*tr.closedCode).To(Equal(ApplicationErrorCode(errorClosedCriticalStream)))
	})

	It("always begins its send buffer with its stream-type byte once Setup has run", func() {
		ctx := &Context{registry: NewRegistry(), logger: utils.DefaultLogger, eventLoop: NewEventLoop()}
		c := InitConn(ctx, nil)
		tr2 := &fakeTransport{isServer: true, peerAddr: &net.UDPAddr{IP: net.ParseIP("198.51.100.3"), Port: 3}, offeredCID: []byte{1}}
		Expect(c.Setup(tr2)).To(Succeed())

		Expect(c.egressControl.sendBuf[0]).To(Equal(byte(StreamTypeControl)))
		Expect(c.egressQPACKEncoder.sendBuf[0]).To(Equal(byte(StreamTypeQPACKEncoder)))
		Expect(c.egressQPACKDecoder.sendBuf[0]).To(Equal(byte(StreamTypeQPACKDecoder)))
		Expect(len(tr2.opened)).To(Equal(3))
	})
})

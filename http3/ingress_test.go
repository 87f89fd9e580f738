package http3

import (
	"bytes"
	"net"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/saitolume/h3mux/internal/protocol"
	"github.com/saitolume/h3mux/internal/utils"
)

// fakeTransport is a minimal Transport double for tests that only care
// about CloseWithError/OpenUniStream bookkeeping, not the full gomock
// expectation machinery in internal/mocks (which would import this
// package and can't be used from inside it).
type fakeTransport struct {
	closedCode   *ApplicationErrorCode
	closedReason string
	peerAddr     *net.UDPAddr
	offeredCID   protocol.ConnectionID
	isServer     bool
	masterID     uint64
	opened       []*EgressStream
	denyOwnership bool
	free         bool
}

func (f *fakeTransport) MasterID() uint64      { return f.masterID }
func (f *fakeTransport) IsServer() bool        { return f.isServer }
func (f *fakeTransport) OfferedCID() protocol.ConnectionID { return f.offeredCID }
func (f *fakeTransport) PeerAddr() *net.UDPAddr { return f.peerAddr }
func (f *fakeTransport) OwnsPacket(pkt Packet) bool { return !f.denyOwnership }
func (f *fakeTransport) Receive(pkt Packet) error   { return nil }

func (f *fakeTransport) OpenUniStream(sink EgressSink) (SendHandle, error) {
	if e, ok := sink.(*EgressStream); ok {
		f.opened = append(f.opened, e)
	}
	return &fakeSendHandle{}, nil
}

func (f *fakeTransport) NextOutboundPackets(max int) ([][]byte, bool, error) {
	return nil, true, nil
}

func (f *fakeTransport) CloseWithError(code ApplicationErrorCode, reason string) error {
	c := code
	f.closedCode = &c
	f.closedReason = reason
	return nil
}

func (f *fakeTransport) FreeConnection() bool    { return f.free }
func (f *fakeTransport) NextTimeout() time.Time  { return time.Time{} }
func (f *fakeTransport) Close() error            { return nil }

var _ Transport = (*fakeTransport)(nil)

type fakeReceiveHandle struct {
	stopped *ApplicationErrorCode
}

func (h *fakeReceiveHandle) StopSending(code ApplicationErrorCode) { c := code; h.stopped = &c }

type fakeSendHandle struct{ notifies int }

func (h *fakeSendHandle) NotifyNewData() { h.notifies++ }

// newTestConn builds a *Conn with a fakeTransport already attached, enough
// for ingress/egress/send unit tests that don't need a real Context/Registry.
// It carries a real (fake) timer/eventLoop so conn.send() is safe to call
// directly, the way the read path now calls it after every process_packets.
func newTestConn() (*Conn, *fakeTransport) {
	loop := &testEventLoop{now: time.Unix(1000, 0)}
	ctx := &Context{registry: NewRegistry(), logger: utils.DefaultLogger, eventLoop: loop}
	c := &Conn{ctx: ctx, logger: utils.DefaultLogger, qpackDecoder: NewQPACKDecoder()}
	c.timer = newConnTimer(loop, c.send)
	tr := &fakeTransport{peerAddr: &net.UDPAddr{IP: net.ParseIP("203.0.113.1"), Port: 1}}
	c.transport = tr
	return c, tr
}

var _ = Describe("Ingress unistream", func() {
	var (
		conn *Conn
		tr   *fakeTransport
		rh   *fakeReceiveHandle
		s    *IngressStream
	)

	BeforeEach(func() {
		conn, tr = newTestConn()
		rh = &fakeReceiveHandle{}
		s = newIngressStream(conn, rh)
	})

	It("classifies a control stream from its type byte and parses the first SETTINGS frame", func() {
		var settingsFrame bytes.Buffer
		Expect(Settings{SettingHeaderTableSize: 4096}.WriteFrame(&settingsFrame)).To(Succeed())

		wire := append([]byte{byte(StreamTypeControl)}, settingsFrame.Bytes()...)
		consumed, err := s.Receive(0, wire, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(consumed).To(Equal(len(wire)))
		Expect(s.role).To(Equal(roleControl))
		Expect(conn.hasReceivedSettings).To(BeTrue())
		Expect(conn.ingressControl).To(BeIdenticalTo(s))
	})

	It("fails the connection with H3_FRAME_ERROR on a second SETTINGS frame", func() {
		var frame1, frame2 bytes.Buffer
		Expect(Settings{}.WriteFrame(&frame1)).To(Succeed())
		Expect(Settings{}.WriteFrame(&frame2)).To(Succeed())

		wire := append([]byte{byte(StreamTypeControl)}, frame1.Bytes()...)
		_, err := s.Receive(0, wire, false)
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Receive(len(wire), frame2.Bytes(), false)
		Expect(err).To(HaveOccurred())
		_, ok := err.(*MalformedFrameError)
		Expect(ok).To(BeTrue())
		Expect(tr.closedCode).NotTo(BeNil())
		Expect(*tr.closedCode).To(Equal(ApplicationErrorCode(errorFrameError)))
	})

	It("fails the connection when DATA arrives on the control stream", func() {
		var settingsFrame bytes.Buffer
		Expect(Settings{}.WriteFrame(&settingsFrame)).To(Succeed())
		dataFrame := encodeFrame(GinkgoT(), FrameTypeData, []byte("nope"))

		wire := append([]byte{byte(StreamTypeControl)}, settingsFrame.Bytes()...)
		wire = append(wire, dataFrame...)

		_, err := s.Receive(0, wire, false)
		Expect(err).To(HaveOccurred())
		_, ok := err.(*MalformedFrameError)
		Expect(ok).To(BeTrue())
	})

	It("rejects an oversized non-DATA frame with H3_FRAME_ERROR", func() {
		oversized := encodeFrame(GinkgoT(), FrameTypeHeaders, make([]byte, 16384))
		wire := append([]byte{byte(StreamTypeControl)}, oversized...)

		_, err := s.Receive(0, wire, false)
		Expect(err).To(HaveOccurred())
		_, ok := err.(*FrameLengthError)
		Expect(ok).To(BeTrue())
		Expect(*tr.closedCode).To(Equal(ApplicationErrorCode(errorFrameError)))
	})

	It("stops an unknown stream type and discards subsequent bytes", func() {
		wire := []byte{0xff, 'j', 'u', 'n', 'k'}
		consumed, err := s.Receive(0, wire, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(consumed).To(Equal(len(wire)))
		Expect(s.role).To(Equal(roleDiscard))
		Expect(rh.stopped).NotTo(BeNil())
		Expect(*rh.stopped).To(Equal(ApplicationErrorCode(errorUnknownStreamType)))
	})

	It("fails the connection with CLOSED_CRITICAL_STREAM on fin", func() {
		s.role = roleControl
		conn.ingressControl = s
		_, err := s.Receive(0, nil, true)
		Expect(err).To(HaveOccurred())
		_, ok := err.(*ClosedCriticalStreamError)
		Expect(ok).To(BeTrue())
		Expect(*tr.closedCode).To(Equal(ApplicationErrorCode(errorClosedCriticalStream)))
	})

	It("fails the connection with CLOSED_CRITICAL_STREAM on ReceiveReset", func() {
		s.role = roleQPACKEncoder
		err := s.ReceiveReset()
		Expect(err).To(HaveOccurred())
		Expect(*tr.closedCode).To(Equal(ApplicationErrorCode(errorClosedCriticalStream)))
	})

	It("rejects a second control stream as CLOSED_CRITICAL_STREAM", func() {
		first := newIngressStream(conn, rh)
		_, err := first.Receive(0, []byte{byte(StreamTypeControl)}, false)
		Expect(err).NotTo(HaveOccurred())

		second := newIngressStream(conn, rh)
		_, err = second.Receive(0, []byte{byte(StreamTypeControl)}, false)
		Expect(err).To(HaveOccurred())
		_, ok := err.(*ClosedCriticalStreamError)
		Expect(ok).To(BeTrue())
	})
})

package http3

import (
	"bytes"
	"context"
	"errors"
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/saitolume/h3mux/internal/protocol"
)

// readBatchSize bounds how many datagrams one ReadBatch call asks the
// kernel for, matching the teacher's own batch-read sizing for quic-go's
// connection (spec.md §4.F: "batched datagram read").
const readBatchSize = 32
const maxDatagramSize = 1452

// maxPacketGroup is how many consecutively-decoded packets may accumulate
// in one peer+destCID group before it's flushed regardless of whether the
// grouping key has changed (spec.md §4.F step 3: "up to 64 packets
// buffered").
const maxPacketGroup = 64

// ReadLoop owns the receive side of one UDP socket: batched reads via
// golang.org/x/net/ipv4's recvmmsg-backed ReadBatch, packet decode
// delegated to a PacketDecoder, grouping of consecutive same-(peer,
// destCID) packets, and dispatch through the Context's registry (spec.md
// §4.D/§4.F).
type ReadLoop struct {
	ctx      *Context
	pconn    *ipv4.PacketConn
	decoder  PacketDecoder
	acceptor ConnAcceptor

	msgs []ipv4.Message
	bufs [][]byte

	// group accumulates consecutive decoded packets that share a peer
	// address and destination connection ID, per spec.md §4.F step 3. It
	// is force-flushed at the end of every RunOnce so a batch never leaves
	// packets stranded unprocessed; a group therefore never spans two
	// ReadBatch calls.
	groupPeer    *net.UDPAddr
	groupCID     protocol.ConnectionID
	groupHasCID  bool
	groupPackets []Packet

	// onFlush, when set, replaces processPackets as the group flush target.
	// It exists solely so tests can observe the grouping boundaries
	// (spec.md §8 scenario 6) without needing a full registry/transport.
	onFlush func(peer *net.UDPAddr, packets []Packet)
}

// NewReadLoop wraps conn for batched reads. conn is typically a
// *net.UDPConn; ipv4.NewPacketConn also serves IPv6 sockets transparently
// via the kernel's dual-stack ReadBatch path.
func NewReadLoop(ctx *Context, conn net.PacketConn, decoder PacketDecoder, acceptor ConnAcceptor) *ReadLoop {
	rl := &ReadLoop{
		ctx:      ctx,
		pconn:    ipv4.NewPacketConn(conn),
		decoder:  decoder,
		acceptor: acceptor,
		msgs:     make([]ipv4.Message, readBatchSize),
		bufs:     make([][]byte, readBatchSize),
	}
	for i := range rl.msgs {
		rl.bufs[i] = make([]byte, maxDatagramSize)
		rl.msgs[i].Buffers = [][]byte{rl.bufs[i]}
	}
	return rl
}

// RunOnce reads and dispatches one batch of datagrams, returning the
// number processed. It never blocks longer than the underlying socket
// read does; callers loop this from their own goroutine. A ReadBatch
// interrupted by a signal (EINTR) is retried rather than surfaced, since
// it carries no datagrams and isn't a real socket failure.
func (rl *ReadLoop) RunOnce() (int, error) {
	var n int
	var err error
	for {
		n, err = rl.pconn.ReadBatch(rl.msgs, 0)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		break
	}
	if err != nil {
		return 0, err
	}
	if rl.ctx.metrics != nil {
		rl.ctx.metrics.datagramBatches.Observe(float64(n))
	}

	for i := 0; i < n; i++ {
		msg := rl.msgs[i]
		addr, ok := msg.Addr.(*net.UDPAddr)
		if !ok {
			continue
		}
		rl.decodeAndGroup(addr, rl.bufs[i][:msg.N])
	}
	rl.flushGroup()
	return n, nil
}

// Serve runs workers concurrent ReadLoop goroutines against the same
// socket — a standard way to scale datagram ingestion across cores when a
// single goroutine's ReadBatch calls can't keep the socket drained — and
// blocks until one of them errors or ctx is canceled. Each worker gets its
// own batch buffers and its own packet group (so one worker's in-flight
// group is never split across goroutines); only the underlying
// ipv4.PacketConn (and the shared Context/Registry dispatch targets) are
// shared, matching spec.md §5's invariant that only the registry itself
// needs synchronization.
func (rl *ReadLoop) Serve(ctx context.Context, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		worker := &ReadLoop{ctx: rl.ctx, pconn: rl.pconn, decoder: rl.decoder, acceptor: rl.acceptor}
		worker.msgs = make([]ipv4.Message, readBatchSize)
		worker.bufs = make([][]byte, readBatchSize)
		for j := range worker.msgs {
			worker.bufs[j] = make([]byte, maxDatagramSize)
			worker.msgs[j].Buffers = [][]byte{worker.bufs[j]}
		}
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				if _, err := worker.RunOnce(); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}

// decodeAndGroup decodes one datagram (which may contain one or more
// coalesced QUIC packets, spec.md §4.F step 3) and feeds each resulting
// packet through the peer+destCID grouping accumulator.
func (rl *ReadLoop) decodeAndGroup(addr *net.UDPAddr, raw []byte) {
	packets, err := rl.decoder.Decode(raw, addr)
	if err != nil {
		if rl.ctx.metrics != nil {
			rl.ctx.metrics.packetsDropped.WithLabelValues("decode_error").Inc()
		}
		return
	}
	if rl.ctx.metrics != nil {
		rl.ctx.metrics.packetsReceived.Add(float64(len(packets)))
	}

	for _, pkt := range packets {
		rl.addToGroup(addr, pkt)
	}
}

// addToGroup appends pkt to the running group if it shares the group's
// peer and destination CID and the group isn't yet full; otherwise it
// flushes the running group first and starts a fresh one, per spec.md
// §4.F step 3: "When either grouping key changes, or the packet array
// fills, or the datagram changes peer, flush the current group ... and
// reset."
func (rl *ReadLoop) addToGroup(addr *net.UDPAddr, pkt Packet) {
	cid := pkt.DestConnectionID()
	sameGroup := rl.groupHasCID &&
		sameUDPAddr(rl.groupPeer, addr) &&
		bytes.Equal(rl.groupCID, cid) &&
		len(rl.groupPackets) < maxPacketGroup
	if !sameGroup {
		rl.flushGroup()
		rl.groupPeer = addr
		rl.groupCID = cid
		rl.groupHasCID = true
	}
	rl.groupPackets = append(rl.groupPackets, pkt)
}

// flushGroup hands the accumulated group to processPackets and resets the
// accumulator. It's a no-op when nothing has accumulated yet.
func (rl *ReadLoop) flushGroup() {
	if len(rl.groupPackets) == 0 {
		return
	}
	if rl.onFlush != nil {
		rl.onFlush(rl.groupPeer, rl.groupPackets)
	} else {
		rl.processPackets(rl.groupPeer, rl.groupPackets)
	}
	rl.groupPeer = nil
	rl.groupCID = nil
	rl.groupHasCID = false
	rl.groupPackets = nil
}

// processPackets implements spec.md §4.F's process_packets(peer, packets):
// look the connection up via the registry's two stages (4.D); if it's
// missing and a ConnAcceptor is configured, give the acceptor a chance to
// mint one from the group's first packet. Either way, once a connection is
// in hand every packet in the group is delivered to its transport, and the
// send path (4.G) is invoked immediately afterward — egress locality while
// the connection's state is hot.
func (rl *ReadLoop) processPackets(peer *net.UDPAddr, packets []Packet) {
	conn, ok := rl.ctx.registry.Lookup(peer, packets[0])
	if !ok {
		if rl.acceptor == nil {
			if rl.ctx.metrics != nil {
				rl.ctx.metrics.packetsDropped.WithLabelValues("no_acceptor").Inc()
			}
			return
		}
		accepted, err := rl.acceptor.Accept(peer, packets[0])
		if err != nil {
			if rl.ctx.metrics != nil {
				rl.ctx.metrics.packetsDropped.WithLabelValues("accept_error").Inc()
			}
			return
		}
		if accepted == nil {
			if rl.ctx.metrics != nil {
				rl.ctx.metrics.packetsDropped.WithLabelValues("accept_declined").Inc()
			}
			return
		}
		conn = accepted
	}

	for _, pkt := range packets {
		if err := conn.transport.Receive(pkt); err != nil {
			conn.fail(err)
		}
	}
	conn.send()
}

func sameUDPAddr(a, b *net.UDPAddr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Port == b.Port && a.IP.Equal(b.IP)
}

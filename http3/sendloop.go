package http3

import "time"

// maxOutboundBatch bounds how many packets NextOutboundPackets is asked for
// per drain, matching the teacher's batching constant for the recvmmsg/
// sendmmsg-style syscalls (spec.md §4.G).
const maxOutboundBatch = 64

// connTimer owns the single per-connection idle/retransmission timer
// spec.md §4.G describes: linked against the context's EventLoop, rearmed
// after every send, and a no-op when rescheduled to the same deadline it
// already holds.
type connTimer struct {
	loop     EventLoop
	onFire   func()
	handle   TimerHandle
	deadline time.Time
}

func newConnTimer(loop EventLoop, onFire func()) *connTimer {
	return &connTimer{loop: loop, onFire: onFire}
}

// reschedule implements spec.md §4.G's schedule_timer: rearm the timer for
// deadline unless it's already armed for exactly that deadline, and never
// arm with a negative delay (a past deadline fires on the next tick, not
// immediately re-entrantly).
func (t *connTimer) reschedule(deadline time.Time) {
	if t.handle != nil && deadline.Equal(t.deadline) {
		return
	}
	if t.handle != nil {
		t.handle.Unlink()
	}
	t.deadline = deadline
	delay := deadline.Sub(t.loop.Now())
	if delay < 0 {
		delay = 0
	}
	t.handle = t.loop.Link(delay, t.onFire)
}

func (t *connTimer) unlink() {
	if t.handle != nil {
		t.handle.Unlink()
		t.handle = nil
	}
	t.deadline = time.Time{}
}

// scheduleTimer asks the transport for its next deadline and rearms the
// connection's timer against it (spec.md §4.G, called after Setup and
// after every send).
func (c *Conn) scheduleTimer() {
	c.timer.reschedule(c.transport.NextTimeout())
}

// send implements spec.md §4.G's send(conn): if the transport reports the
// connection is free-able, dispose of it and stop — no more rescheduling
// (spec.md §7's disposition for a finished connection). Otherwise drain the
// transport's outbound packet queue in batches until a short (or empty)
// batch is returned, handing each batch to the owning Context's egress
// sink, then reschedule the idle timer against whatever deadline the
// transport now reports.
//
// send is also the timer's onFire callback (spec.md §4.G on_timeout:
// "call send(conn) unconditionally; the transport decides whether there's
// actually anything to do").
func (c *Conn) send() {
	if c.transport == nil {
		return
	}
	if c.transport.FreeConnection() {
		c.Dispose()
		return
	}
	for {
		packets, short, err := c.transport.NextOutboundPackets(maxOutboundBatch)
		if err != nil {
			c.fail(err)
			return
		}
		if c.ctx.metrics != nil && len(packets) > 0 {
			c.ctx.metrics.packetsSent.Add(float64(len(packets)))
		}
		if c.ctx != nil && c.ctx.egress != nil {
			for _, p := range packets {
				c.ctx.egress.WriteTo(p, c.transport.PeerAddr())
			}
		}
		if short || len(packets) == 0 {
			break
		}
	}
	c.scheduleTimer()
}

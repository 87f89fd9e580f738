package http3

// EgressStream is one of the connection's three self-opened unidirectional
// streams (spec.md §3/§4.E "Egress"). Its send buffer always begins with
// its stream-type byte once it has emitted anything (spec.md §3 invariant).
type EgressStream struct {
	conn       *Conn
	streamType StreamType
	handle     SendHandle
	sendBuf    []byte
}

var _ EgressSink = (*EgressStream)(nil)

func newEgressStream(conn *Conn, typ StreamType) *EgressStream {
	return &EgressStream{conn: conn, streamType: typ}
}

// append adds p to the tail of the send buffer. Callers notify the
// transport of the new bytes separately (notify), matching spec.md §4.E:
// "opens three egress unidirectional streams ... then notifies the
// transport of new send-buffer bytes on each."
func (e *EgressStream) append(p []byte) {
	e.sendBuf = append(e.sendBuf, p...)
}

func (e *EgressStream) notify() {
	if e.handle != nil {
		e.handle.NotifyNewData()
	}
}

// Shift implements on_send_shift: the transport has durably handed off the
// first delta bytes; drop them.
func (e *EgressStream) Shift(delta int) {
	if delta <= 0 {
		return
	}
	if delta >= len(e.sendBuf) {
		e.sendBuf = e.sendBuf[:0]
		return
	}
	copy(e.sendBuf, e.sendBuf[delta:])
	e.sendBuf = e.sendBuf[:len(e.sendBuf)-delta]
}

// Emit implements on_send_emit: copy up to len(dst) bytes from offset into
// dst, reporting how many bytes were written and whether doing so consumed
// everything the send buffer had left from offset (i.e. the request
// saturated the remaining send-buffer bytes, spec.md §4.E).
func (e *EgressStream) Emit(offset int, dst []byte) (n int, wroteAll bool) {
	if offset >= len(e.sendBuf) {
		return 0, true
	}
	available := e.sendBuf[offset:]
	n = copy(dst, available)
	return n, n == len(available)
}

// Stop implements on_send_stop: fatal, yields CLOSED_CRITICAL_STREAM
// (spec.md §4.E/§7).
func (e *EgressStream) Stop(err error) {
	e.conn.fail(&ClosedCriticalStreamError{StreamType: e.streamType})
}

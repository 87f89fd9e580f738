package http3

import (
	"bytes"

	"github.com/hashicorp/go-multierror"

	"github.com/saitolume/h3mux/internal/utils"
)

// ConnCallbacks lets the owning Context observe control-stream frames and
// learn when a connection has finished tearing itself down, without this
// package importing anything about the HTTP layer built on top of it
// (spec.md §1 scopes request/response semantics out of this core).
type ConnCallbacks interface {
	// HandleControlStreamFrame is called for every frame read off the
	// peer's control stream, including the SETTINGS frame itself
	// (spec.md §4.E handle_control: "dispatch every frame ... to the
	// connection's callback").
	HandleControlStreamFrame(typ FrameType, payload []byte, length uint64)
	// DestroyConnection is called once Dispose has unregistered and torn
	// down transport state, so the owner can drop its own reference.
	DestroyConnection(c *Conn)
}

// Conn is one HTTP/3 connection atop a single QUIC transport handle
// (spec.md §3 "Connection"). All of its methods run on the single
// cooperative event-loop goroutine (spec.md §5) — nothing here takes a
// lock, matching the teacher's single-threaded quic-go Session loop.
type Conn struct {
	ctx       *Context
	transport Transport
	callbacks ConnCallbacks
	logger    utils.Logger

	qpackDecoder *QPACKDecoder
	qpackEncoder *QPACKEncoder

	hasReceivedSettings bool

	ingressControl      *IngressStream
	ingressQPACKEncoder  *IngressStream
	ingressQPACKDecoder  *IngressStream

	egressControl      *EgressStream
	egressQPACKEncoder *EgressStream
	egressQPACKDecoder *EgressStream

	timer *connTimer

	masterID      uint64
	acceptingHash uint64
	hasAccepting  bool

	// err latches the first fatal error passed to fail, so a cascade of
	// downstream Stop/ReceiveReset calls during teardown only reports once.
	err error
}

// InitConn builds a bare connection object with no transport attached yet
// (spec.md §4.H step 1: "init_conn(ctx, callbacks)"). Setup must be called
// before the connection can do anything useful.
func InitConn(ctx *Context, callbacks ConnCallbacks) *Conn {
	c := &Conn{
		ctx:          ctx,
		callbacks:    callbacks,
		logger:       ctx.logger.WithPrefix("conn"),
		qpackDecoder: NewQPACKDecoder(),
	}
	c.timer = newConnTimer(ctx.eventLoop, c.send)
	return c
}

var _ UniStreamAcceptor = (*Conn)(nil)

// HandleNewUniStream hands back the IngressSink for a freshly discovered
// peer-initiated unidirectional stream (spec.md §4.E "Ingress" lifecycle).
func (c *Conn) HandleNewUniStream(rh ReceiveHandle) IngressSink {
	return newIngressStream(c, rh)
}

// currentQPACKEncoder returns the connection's encoder, or nil if the
// peer's SETTINGS hasn't arrived yet (it's created lazily in
// onPeerSettings, spec.md §3).
func (c *Conn) currentQPACKEncoder() *QPACKEncoder {
	return c.qpackEncoder
}

// onPeerSettings implements spec.md §4.A handle_settings's second half:
// record that SETTINGS arrived and create the QPACK encoder with the
// peer's negotiated table size.
func (c *Conn) onPeerSettings(settings Settings) {
	c.hasReceivedSettings = true
	c.qpackEncoder = NewQPACKEncoder(settings.HeaderTableSize())
}

// Setup attaches transport, registers the connection in both registry
// maps (master-id always, accepting-hash only for a server-side
// connection), and opens the three egress control streams with their
// type-byte preambles — the control stream also carrying an initial,
// empty SETTINGS frame (spec.md §4.H step 2).
func (c *Conn) Setup(transport Transport) error {
	c.transport = transport
	c.masterID = transport.MasterID()
	c.ctx.registry.RegisterByID(c.masterID, c)

	if transport.IsServer() {
		c.acceptingHash = AcceptingHash(transport.PeerAddr(), transport.OfferedCID())
		c.ctx.registry.RegisterAccepting(c.acceptingHash, c)
		c.hasAccepting = true
	}

	c.egressControl = newEgressStream(c, StreamTypeControl)
	c.egressQPACKEncoder = newEgressStream(c, StreamTypeQPACKEncoder)
	c.egressQPACKDecoder = newEgressStream(c, StreamTypeQPACKDecoder)

	if err := c.openEgress(c.egressControl); err != nil {
		return err
	}
	var settingsFrame bytes.Buffer
	if err := (Settings{}).WriteFrame(&settingsFrame); err != nil {
		return err
	}
	c.egressControl.append([]byte{byte(StreamTypeControl)})
	c.egressControl.append(settingsFrame.Bytes())
	c.egressControl.notify()

	if err := c.openEgress(c.egressQPACKEncoder); err != nil {
		return err
	}
	c.egressQPACKEncoder.append([]byte{byte(StreamTypeQPACKEncoder)})
	c.egressQPACKEncoder.notify()

	if err := c.openEgress(c.egressQPACKDecoder); err != nil {
		return err
	}
	c.egressQPACKDecoder.append([]byte{byte(StreamTypeQPACKDecoder)})
	c.egressQPACKDecoder.notify()

	c.scheduleTimer()
	return nil
}

func (c *Conn) openEgress(e *EgressStream) error {
	handle, err := c.transport.OpenUniStream(e)
	if err != nil {
		return err
	}
	e.handle = handle
	return nil
}

// SendQPACKStreamCancel writes RFC 9204's Stream Cancellation instruction
// for streamID onto the egress QPACK-decoder stream (spec.md §4.E helper
// for abandoning a request stream's header block).
func (c *Conn) SendQPACKStreamCancel(streamID uint64) error {
	if err := writeStreamCancellation(sendBufWriter{c.egressQPACKDecoder}, streamID); err != nil {
		return err
	}
	c.egressQPACKDecoder.notify()
	return nil
}

// SendQPACKHeaderAck appends data to the egress QPACK-encoder stream, per
// spec.md §4.E's literal wording for sending a header acknowledgement.
// (RFC 9204 places Header/Section acknowledgements on the decoder stream;
// this profile's spec text names the encoder stream instead, and this
// follows it literally rather than silently correcting it.)
func (c *Conn) SendQPACKHeaderAck(data []byte) {
	c.egressQPACKEncoder.append(data)
	c.egressQPACKEncoder.notify()
}

type sendBufWriter struct{ e *EgressStream }

func (w sendBufWriter) Write(p []byte) (int, error) {
	w.e.append(p)
	return len(p), nil
}

// fail records the connection's first fatal error and surfaces it to the
// transport as a connection close (spec.md §7: "surface to transport as
// connection error"). Later calls while a failure is already in flight are
// no-ops, since Stop/ReceiveReset cascades are expected once the first
// critical stream closes.
func (c *Conn) fail(err error) {
	if c.err != nil {
		return
	}
	c.err = err
	code := errorCodeForErr(err)
	if cerr := c.transport.CloseWithError(ApplicationErrorCode(code), err.Error()); cerr != nil {
		c.logger.Errorf("CloseWithError: %v", cerr)
	}
}

// errorCodeForErr maps a core error to the application error code spec.md
// §7's disposition table assigns it.
func errorCodeForErr(err error) errorCode {
	switch err.(type) {
	case *ClosedCriticalStreamError:
		return errorClosedCriticalStream
	case *MalformedFrameError, *FrameLengthError, *MalformedSettingsError:
		return errorFrameError
	case *FrameTypeError:
		return errorFrameUnexpected
	default:
		return errorInternalError
	}
}

// Dispose implements spec.md §4.H's teardown: unlink the timer, unregister
// from both registry maps, destroy the QPACK codecs, and close the
// transport handle, aggregating whatever fails along the way rather than
// stopping at the first error (matching the teacher's go-multierror use
// elsewhere for best-effort teardown).
func (c *Conn) Dispose() error {
	var result *multierror.Error

	c.timer.unlink()

	if c.transport != nil {
		c.ctx.registry.UnregisterByID(c.masterID)
		if c.hasAccepting {
			c.ctx.registry.UnregisterAccepting(c.acceptingHash)
		}
	}

	if err := c.qpackDecoder.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.qpackEncoder != nil {
		if err := c.qpackEncoder.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if c.callbacks != nil {
		c.callbacks.DestroyConnection(c)
	}

	return result.ErrorOrNil()
}

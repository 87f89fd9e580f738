package http3

// streamRole is the sum-type spec.md §9 asks for: a tagged variant rather
// than a function-pointer chain, dispatched with a plain switch in
// handleInput below (matching the teacher's own StreamType switch in
// conn.go's handleIncomingUniStream).
type streamRole int

const (
	roleUnknown streamRole = iota
	roleControl
	roleQPACKEncoder
	roleQPACKDecoder
	roleDiscard
)

// IngressStream is one discovered peer-initiated unidirectional stream
// (spec.md §3/§4.E "Ingress"). Its role is fixed for life once classified
// from the leading type byte.
type IngressStream struct {
	conn *Conn
	rh   ReceiveHandle
	recv RecvBuffer
	role streamRole
	// base is the absolute stream offset of recv's first byte: the number
	// of bytes already consumed and advanced out of recv.
	base int
}

var _ IngressSink = (*IngressStream)(nil)

func newIngressStream(conn *Conn, rh ReceiveHandle) *IngressStream {
	return &IngressStream{conn: conn, rh: rh, role: roleUnknown}
}

// streamType reports the classified StreamType for error messages; zero
// before classification completes.
func (s *IngressStream) streamType() StreamType {
	switch s.role {
	case roleControl:
		return StreamTypeControl
	case roleQPACKEncoder:
		return StreamTypeQPACKEncoder
	case roleQPACKDecoder:
		return StreamTypeQPACKDecoder
	default:
		return 0
	}
}

// Receive implements spec.md §4.E's ingress on_receive:
//
//  1. splice bytes into the recv buffer at their absolute offset
//  2. a fin from the transport on any discovered (hence critical) stream
//     is always CLOSED_CRITICAL_STREAM
//  3. compute the available contiguous window; an empty window succeeds
//  4. invoke the current handler; consume the prefix it advanced over
func (s *IngressStream) Receive(offset int, data []byte, fin bool) (int, error) {
	if offset < s.base {
		if skip := s.base - offset; skip >= len(data) {
			data = nil
		} else {
			data = data[skip:]
		}
		offset = s.base
	}
	s.recv.Splice(offset-s.base, data)
	if fin {
		err := &ClosedCriticalStreamError{StreamType: s.streamType()}
		s.conn.fail(err)
		return 0, err
	}
	window := s.recv.Bytes()
	if len(window) == 0 {
		return 0, nil
	}
	consumed, err := s.handleInput(window)
	if consumed > 0 {
		s.recv.Advance(consumed)
		s.base += consumed
	}
	if err != nil {
		s.conn.fail(err)
	}
	return consumed, err
}

// ReceiveReset implements spec.md §4.E: "A receive reset on any ingress
// unistream yields CLOSED_CRITICAL_STREAM." The core surfaces this to the
// transport as a connection error itself (spec.md §7), rather than relying
// on the transport to interpret the returned error.
func (s *IngressStream) ReceiveReset() error {
	err := &ClosedCriticalStreamError{StreamType: s.streamType()}
	s.conn.fail(err)
	return err
}

func (s *IngressStream) handleInput(window []byte) (int, error) {
	switch s.role {
	case roleUnknown:
		return s.handleUnknownType(window)
	case roleControl:
		return s.handleControl(window)
	case roleQPACKEncoder:
		_, err := s.conn.qpackDecoder.FeedEncoderStream(window)
		return len(window), err
	case roleQPACKDecoder:
		enc := s.conn.currentQPACKEncoder()
		if enc == nil {
			// The peer referenced decoder-stream state (an ack, a
			// cancellation, an insert-count increment) before our own
			// encoder — created lazily once we've received the peer's
			// SETTINGS — exists. There is nothing meaningful to apply
			// these bytes to yet; drop them rather than block the stream.
			s.conn.logger.Warnf("QPACK decoder-stream bytes received before local encoder existed; dropping %d bytes", len(window))
			return len(window), nil
		}
		err := enc.FeedDecoderStream(window)
		return len(window), err
	case roleDiscard:
		return len(window), nil
	default:
		return 0, nil
	}
}

// handleUnknownType implements spec.md §4.E's unknown_type handler: read
// one type byte, classify, bind to the connection, then re-enter the new
// handler with whatever bytes remain in this same call.
func (s *IngressStream) handleUnknownType(window []byte) (int, error) {
	if len(window) == 0 {
		return 0, nil
	}
	typeByte := StreamType(window[0])
	switch typeByte {
	case StreamTypeControl:
		if s.conn.ingressControl != nil {
			return 1, &ClosedCriticalStreamError{StreamType: StreamTypeControl}
		}
		s.role = roleControl
		s.conn.ingressControl = s
	case StreamTypeQPACKEncoder:
		if s.conn.ingressQPACKEncoder != nil {
			return 1, &ClosedCriticalStreamError{StreamType: StreamTypeQPACKEncoder}
		}
		s.role = roleQPACKEncoder
		s.conn.ingressQPACKEncoder = s
	case StreamTypeQPACKDecoder:
		if s.conn.ingressQPACKDecoder != nil {
			return 1, &ClosedCriticalStreamError{StreamType: StreamTypeQPACKDecoder}
		}
		s.role = roleQPACKDecoder
		s.conn.ingressQPACKDecoder = s
	default:
		s.rh.StopSending(ApplicationErrorCode(errorUnknownStreamType))
		s.role = roleDiscard
	}

	n, err := s.handleInput(window[1:])
	return 1 + n, err
}

// handleControl implements spec.md §4.E's control handler: loop reading
// frames, rejecting DATA, enforcing "first frame is SETTINGS, at most
// once," and dispatching everything else to the connection's callback.
func (s *IngressStream) handleControl(window []byte) (int, error) {
	consumed := 0
	for {
		cursor := window[consumed:]
		frame, n, err := ReadFrame(cursor)
		if err == ErrIncomplete {
			return consumed, nil
		}
		if err != nil {
			return consumed, err
		}

		if frame.Type == FrameTypeData {
			return consumed, &MalformedFrameError{Type: frame.Type}
		}

		isSettings := frame.Type == FrameTypeSettings
		if s.conn.hasReceivedSettings == isSettings {
			return consumed, &MalformedFrameError{Type: frame.Type}
		}

		if isSettings {
			settings, perr := ParseSettings(frame.Payload)
			if perr != nil {
				return consumed, perr
			}
			s.conn.onPeerSettings(settings)
		}

		if s.conn.callbacks != nil {
			s.conn.callbacks.HandleControlStreamFrame(frame.Type, frame.Payload, frame.Length)
		}

		consumed += n
	}
}

package http3

import (
	"net"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/saitolume/h3mux/internal/utils"
)

// EgressWriter is the socket-facing sink send() hands finished packets to
// (http3/sendloop.go). Kept separate from Transport because it's shared by
// every connection on the Context, not per-connection.
type EgressWriter interface {
	WriteTo(packet []byte, addr *net.UDPAddr) (int, error)
}

// PacketDecoder turns one raw datagram payload into the one or more QUIC
// packets it coalesces (spec.md §4.F step 3: "decodes each datagram into
// one or more QUIC packets"), the one step this core always delegates to
// the external QUIC transport (spec.md §1).
type PacketDecoder interface {
	Decode(raw []byte, addr *net.UDPAddr) ([]Packet, error)
}

// ConnAcceptor mints a new Conn for a packet that missed both registry
// lookups but still warrants accepting (a server-side Initial), per
// spec.md §4.D's "else hand to acceptor" branch.
type ConnAcceptor interface {
	Accept(peerAddr *net.UDPAddr, pkt Packet) (*Conn, error)
}

// Context is the shared state every connection on one socket is created
// against (spec.md §3 "Context"): the registry both lookup stages share,
// the event loop connections arm their idle timers against, and the
// logger/metrics every connection inherits a prefixed view of.
type Context struct {
	registry  *Registry
	eventLoop EventLoop
	logger    utils.Logger
	egress    EgressWriter

	metrics *contextMetrics
}

// contextMetrics are the prometheus counters/gauges this core exposes.
// ReadLoop updates packetsReceived, packetsDropped and datagramBatches, and
// Conn.send (sendloop.go) updates packetsSent. connectionsActive is
// registered, but nothing in this package sets it, so it stays at zero.
type contextMetrics struct {
	connectionsActive prometheus.Gauge
	packetsReceived   prometheus.Counter
	packetsSent       prometheus.Counter
	packetsDropped    *prometheus.CounterVec
	datagramBatches   prometheus.Histogram
}

func newContextMetrics(reg prometheus.Registerer, namespace string) *contextMetrics {
	m := &contextMetrics{
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of HTTP/3 connections currently registered.",
		}),
		packetsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_received_total",
			Help:      "Decoded packets handed to the demultiplexer.",
		}),
		packetsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_sent_total",
			Help:      "Outbound packets handed back to the socket.",
		}),
		packetsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_dropped_total",
			Help:      "Packets dropped by reason during demultiplexing.",
		}, []string{"reason"}),
		datagramBatches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "datagram_batch_size",
			Help:      "Datagrams returned per ReadBatch call.",
			Buckets:   prometheus.LinearBuckets(1, 8, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.connectionsActive, m.packetsReceived, m.packetsSent, m.packetsDropped, m.datagramBatches)
	}
	return m
}

// NewContext builds a Context ready to accept connections. reg may be nil
// to skip prometheus registration (e.g. in tests).
func NewContext(eventLoop EventLoop, logger utils.Logger, reg prometheus.Registerer) *Context {
	if logger == nil {
		logger = utils.DefaultLogger
	}
	return &Context{
		registry:  NewRegistry(),
		eventLoop: eventLoop,
		logger:    logger,
		metrics:   newContextMetrics(reg, "h3mux"),
	}
}

// SetEgress wires the socket writer send() drains outbound packets into.
// Separate from NewContext so a test can build a Context before its
// transport-facing socket exists.
func (ctx *Context) SetEgress(w EgressWriter) { ctx.egress = w }

// Registry exposes the context's connection registry, e.g. for a readloop
// living outside this package's test helpers.
func (ctx *Context) Registry() *Registry { return ctx.registry }

// Len reports the number of connections currently registered by master-id,
// a cheap liveness signal for diagnostics (http3/debug.go).
func (ctx *Context) Len() int { return ctx.registry.Len() }

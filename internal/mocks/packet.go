package mocks

import (
	"net"

	"github.com/saitolume/h3mux/internal/protocol"
)

// Packet is a plain fake implementing http3.Packet, used where a test
// wants to control field values directly rather than script gomock
// expectations (the teacher's own tests mix generated mocks for session
// state with plain struct fakes for simple value types, e.g. client_test.go's
// use of bytes.Buffer-backed streams alongside mock_quic.MockSession).
type Packet struct {
	DestCID         protocol.ConnectionID
	ClientGenerated bool
	Source          *net.UDPAddr

	MasterIDValue uint64
	NodeIDValue   uint16
	ThreadIDValue uint16
	DecodeOK      bool
}

func (p *Packet) DestConnectionID() protocol.ConnectionID { return p.DestCID }
func (p *Packet) IsClientGeneratedDestCID() bool { return p.ClientGenerated }
func (p *Packet) SourceAddr() *net.UDPAddr       { return p.Source }

func (p *Packet) DecodedIdentity() (masterID uint64, nodeID, threadID uint16, ok bool) {
	return p.MasterIDValue, p.NodeIDValue, p.ThreadIDValue, p.DecodeOK
}

// Package mocks holds hand-written gomock-style test doubles for the
// http3 package's collaborator interfaces (Transport, Packet, ...). These
// are written by hand rather than generated by mockgen, but follow
// mockgen's own generated shape (Mock*/Mock*MockRecorder/EXPECT) so they
// drop in wherever the teacher's generated mocks would have gone.
package mocks

import (
	"net"
	"reflect"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/saitolume/h3mux/http3"
	"github.com/saitolume/h3mux/internal/protocol"
)

// MockTransport is a mock of the http3.Transport interface.
type MockTransport struct {
	ctrl     *gomock.Controller
	recorder *MockTransportMockRecorder
}

// MockTransportMockRecorder is the mock recorder for MockTransport.
type MockTransportMockRecorder struct {
	mock *MockTransport
}

// NewMockTransport creates a new mock instance.
func NewMockTransport(ctrl *gomock.Controller) *MockTransport {
	mock := &MockTransport{ctrl: ctrl}
	mock.recorder = &MockTransportMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTransport) EXPECT() *MockTransportMockRecorder {
	return m.recorder
}

// MasterID mocks base method.
func (m *MockTransport) MasterID() uint64 {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MasterID")
	ret0, _ := ret[0].(uint64)
	return ret0
}

// MasterID indicates an expected call of MasterID.
func (mr *MockTransportMockRecorder) MasterID() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MasterID", reflect.TypeOf((*MockTransport)(nil).MasterID))
}

// IsServer mocks base method.
func (m *MockTransport) IsServer() bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "IsServer")
	ret0, _ := ret[0].(bool)
	return ret0
}

// IsServer indicates an expected call of IsServer.
func (mr *MockTransportMockRecorder) IsServer() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "IsServer", reflect.TypeOf((*MockTransport)(nil).IsServer))
}

// OfferedCID mocks base method.
func (m *MockTransport) OfferedCID() protocol.ConnectionID {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "OfferedCID")
	ret0, _ := ret[0].(protocol.ConnectionID)
	return ret0
}

// OfferedCID indicates an expected call of OfferedCID.
func (mr *MockTransportMockRecorder) OfferedCID() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OfferedCID", reflect.TypeOf((*MockTransport)(nil).OfferedCID))
}

// PeerAddr mocks base method.
func (m *MockTransport) PeerAddr() *net.UDPAddr {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PeerAddr")
	ret0, _ := ret[0].(*net.UDPAddr)
	return ret0
}

// PeerAddr indicates an expected call of PeerAddr.
func (mr *MockTransportMockRecorder) PeerAddr() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PeerAddr", reflect.TypeOf((*MockTransport)(nil).PeerAddr))
}

// OwnsPacket mocks base method.
func (m *MockTransport) OwnsPacket(pkt http3.Packet) bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "OwnsPacket", pkt)
	ret0, _ := ret[0].(bool)
	return ret0
}

// OwnsPacket indicates an expected call of OwnsPacket.
func (mr *MockTransportMockRecorder) OwnsPacket(pkt interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OwnsPacket", reflect.TypeOf((*MockTransport)(nil).OwnsPacket), pkt)
}

// Receive mocks base method.
func (m *MockTransport) Receive(pkt http3.Packet) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Receive", pkt)
	ret0, _ := ret[0].(error)
	return ret0
}

// Receive indicates an expected call of Receive.
func (mr *MockTransportMockRecorder) Receive(pkt interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Receive", reflect.TypeOf((*MockTransport)(nil).Receive), pkt)
}

// OpenUniStream mocks base method.
func (m *MockTransport) OpenUniStream(sink http3.EgressSink) (http3.SendHandle, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "OpenUniStream", sink)
	ret0, _ := ret[0].(http3.SendHandle)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// OpenUniStream indicates an expected call of OpenUniStream.
func (mr *MockTransportMockRecorder) OpenUniStream(sink interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OpenUniStream", reflect.TypeOf((*MockTransport)(nil).OpenUniStream), sink)
}

// NextOutboundPackets mocks base method.
func (m *MockTransport) NextOutboundPackets(max int) ([][]byte, bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NextOutboundPackets", max)
	ret0, _ := ret[0].([][]byte)
	ret1, _ := ret[1].(bool)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// NextOutboundPackets indicates an expected call of NextOutboundPackets.
func (mr *MockTransportMockRecorder) NextOutboundPackets(max interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NextOutboundPackets", reflect.TypeOf((*MockTransport)(nil).NextOutboundPackets), max)
}

// CloseWithError mocks base method.
func (m *MockTransport) CloseWithError(code http3.ApplicationErrorCode, reason string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CloseWithError", code, reason)
	ret0, _ := ret[0].(error)
	return ret0
}

// CloseWithError indicates an expected call of CloseWithError.
func (mr *MockTransportMockRecorder) CloseWithError(code, reason interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CloseWithError", reflect.TypeOf((*MockTransport)(nil).CloseWithError), code, reason)
}

// FreeConnection mocks base method.
func (m *MockTransport) FreeConnection() bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FreeConnection")
	ret0, _ := ret[0].(bool)
	return ret0
}

// FreeConnection indicates an expected call of FreeConnection.
func (mr *MockTransportMockRecorder) FreeConnection() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FreeConnection", reflect.TypeOf((*MockTransport)(nil).FreeConnection))
}

// NextTimeout mocks base method.
func (m *MockTransport) NextTimeout() time.Time {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NextTimeout")
	ret0, _ := ret[0].(time.Time)
	return ret0
}

// NextTimeout indicates an expected call of NextTimeout.
func (mr *MockTransportMockRecorder) NextTimeout() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NextTimeout", reflect.TypeOf((*MockTransport)(nil).NextTimeout))
}

// Close mocks base method.
func (m *MockTransport) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockTransportMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockTransport)(nil).Close))
}

var _ http3.Transport = (*MockTransport)(nil)

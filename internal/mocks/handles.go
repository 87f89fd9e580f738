package mocks

import "github.com/saitolume/h3mux/http3"

// ReceiveHandle is a plain fake implementing http3.ReceiveHandle, recording
// the last STOP_SENDING code it was asked to send.
type ReceiveHandle struct {
	StoppedWith  *http3.ApplicationErrorCode
	stopSendings int
}

func (h *ReceiveHandle) StopSending(code http3.ApplicationErrorCode) {
	h.StoppedWith = &code
	h.stopSendings++
}

// SendHandle is a plain fake implementing http3.SendHandle, counting how
// many times new data was signaled so tests can assert on notify() calls
// without scripting a gomock expectation for something this simple.
type SendHandle struct {
	NotifyCount int
}

func (h *SendHandle) NotifyNewData() { h.NotifyCount++ }

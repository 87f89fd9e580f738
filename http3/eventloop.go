package http3

import "time"

// realEventLoop is the production EventLoop, backed by time.AfterFunc —
// the same mechanism the teacher's own quic-go connection-level idle
// timers use. Tests substitute a fake (testEventLoop in sendloop_test.go) so the
// no-op-on-unchanged-deadline property can be asserted without sleeping.
type realEventLoop struct{}

// NewEventLoop returns the production, wall-clock-backed EventLoop.
func NewEventLoop() EventLoop { return realEventLoop{} }

func (realEventLoop) Now() time.Time { return time.Now() }

func (realEventLoop) Link(d time.Duration, onTimeout func()) TimerHandle {
	t := time.AfterFunc(d, onTimeout)
	return realTimerHandle{t}
}

type realTimerHandle struct{ t *time.Timer }

func (h realTimerHandle) Unlink() { h.t.Stop() }

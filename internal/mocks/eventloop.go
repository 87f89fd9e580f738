package mocks

import (
	"time"

	"github.com/saitolume/h3mux/http3"
)

// EventLoop is a deterministic fake implementing http3.EventLoop: Now is
// whatever the test last set, and Link never actually schedules anything —
// it just records the call so a test can assert on how many times (and
// for what duration) the connection tried to (re)arm its timer. This is
// what makes spec.md §8's "rescheduling with an unchanged deadline is a
// no-op" and "never arms with a negative delay" properties testable
// without a real clock.
type EventLoop struct {
	CurrentTime time.Time
	Links       []LinkCall
}

// LinkCall records one EventLoop.Link invocation.
type LinkCall struct {
	Delay    time.Duration
	Unlinked bool
}

func (l *EventLoop) Now() time.Time { return l.CurrentTime }

func (l *EventLoop) Link(d time.Duration, onTimeout func()) http3.TimerHandle {
	idx := len(l.Links)
	l.Links = append(l.Links, LinkCall{Delay: d})
	return &timerHandle{loop: l, idx: idx, fire: onTimeout}
}

type timerHandle struct {
	loop *EventLoop
	idx  int
	fire func()
}

func (h *timerHandle) Unlink() {
	h.loop.Links[h.idx].Unlinked = true
}

// Fire invokes the timer's onTimeout callback, simulating it having
// expired, without marking it unlinked (matching real timer semantics:
// firing and unlinking are distinct events).
func (h *timerHandle) Fire() {
	h.fire()
}

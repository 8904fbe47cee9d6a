package stream

import (
	"pulsed/internal/models"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Event names on the wire. Ready is sent once per session right after
// registration; Status carries one broadcast payload.
const (
	EventReady  = "ready"
	EventStatus = "status"
)

// Event is one frame pushed to a subscriber.
type Event struct {
	Name string
	Data []byte
}

// Cause records why a session reached its terminal state.
type Cause int32

const (
	CauseNone Cause = iota
	CauseCompleted
	CauseTimedOut
	CauseErrored
)

func (c Cause) String() string {
	switch c {
	case CauseCompleted:
		return "completed"
	case CauseTimedOut:
		return "timed_out"
	case CauseErrored:
		return "errored"
	default:
		return "open"
	}
}

// Session is one live push connection for an identity. The registry
// owns it from Register until teardown; transports only drain Events
// and watch Done. A session transitions into exactly one terminal
// cause and never leaves it.
type Session struct {
	identity models.Identity
	send     chan Event
	done     chan struct{}
	cause    atomic.Int32

	timerMu sync.Mutex
	timer   *time.Timer
}

func newSession(identity models.Identity, buffer int) *Session {
	if buffer < 1 {
		buffer = 1
	}
	return &Session{
		identity: identity,
		send:     make(chan Event, buffer),
		done:     make(chan struct{}),
	}
}

func (s *Session) Identity() models.Identity {
	return s.identity
}

// Events is the delivery sink the transport drains.
func (s *Session) Events() <-chan Event {
	return s.send
}

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Cause returns CauseNone while the session is still open.
func (s *Session) Cause() Cause {
	return Cause(s.cause.Load())
}

// deliver attempts a non-blocking send. A torn-down session or a full
// sink counts as delivery failure; the broadcaster must never block on
// a slow subscriber.
func (s *Session) deliver(ev Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- ev:
		return true
	default:
		return false
	}
}

// arm sets the session deadline. A session that went terminal while
// the timer was being created gets the timer stopped right away
// instead of leaving it to fire against a dead session.
func (s *Session) arm(d time.Duration, fn func()) {
	t := time.AfterFunc(d, fn)
	s.timerMu.Lock()
	if s.Cause() != CauseNone {
		t.Stop()
	} else {
		s.timer = t
	}
	s.timerMu.Unlock()
}

// terminate performs the single permitted transition out of the open
// state. Returns false if the session was already terminal.
func (s *Session) terminate(cause Cause) bool {
	if !s.cause.CompareAndSwap(int32(CauseNone), int32(cause)) {
		return false
	}
	s.timerMu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timerMu.Unlock()
	close(s.done)
	return true
}

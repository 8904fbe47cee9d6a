package stream

import (
	"pulsed/internal/models"
	"pulsed/internal/providers"
	"pulsed/internal/structures"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const defaultSendBuffer = 64

// Registry maps each identity to its set of live subscriber sessions
// and owns their whole lifecycle. Contention is scoped per identity:
// the index is a sync.Map of copy-on-write buckets, so one identity's
// broadcast never serializes against another's.
type Registry struct {
	buckets    sync.Map // models.Identity -> *bucket
	logger     providers.Logger
	sendBuffer int

	live     atomic.Int64
	failures atomic.Int64
}

// bucket holds one identity's sessions. The slice is copy-on-write:
// readers take the current slice under mu and iterate it unlocked, so
// a concurrent unregister can swap in a new slice without invalidating
// an in-flight broadcast. gone marks a bucket that has been removed
// from the index; registration retries against a fresh one.
type bucket struct {
	mu       sync.Mutex
	sessions []*Session
	gone     bool
}

func NewRegistry(conf *structures.Config, logger providers.Logger) *Registry {
	buffer := conf.Stream.SendBuffer
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &Registry{
		logger:     logger,
		sendBuffer: buffer,
	}
}

// Register creates a session for identity, adds it to the identity's
// set, arms the deadline and pushes the handshake frame. Registration
// never fails: if the handshake can not be delivered the session is
// handed back already torn down.
func (r *Registry) Register(identity models.Identity, timeout time.Duration) *Session {
	s := newSession(identity, r.sendBuffer)

	for {
		b, _ := r.buckets.LoadOrStore(identity, &bucket{})
		bk := b.(*bucket)
		bk.mu.Lock()
		if bk.gone {
			bk.mu.Unlock()
			continue
		}
		next := make([]*Session, len(bk.sessions), len(bk.sessions)+1)
		copy(next, bk.sessions)
		bk.sessions = append(next, s)
		bk.mu.Unlock()
		break
	}
	r.live.Inc()

	s.arm(timeout, func() {
		r.teardown(s, CauseTimedOut)
	})

	r.logger.Infof(providers.TypeStream, "Stream register: identity=%s subscribers=%d", identity, r.identitySessions(identity))

	if !s.deliver(Event{Name: EventReady, Data: []byte("ok")}) {
		r.teardown(s, CauseErrored)
	}
	return s
}

// Broadcast delivers payload to every live session of identity and
// reports how many sessions were targeted. Each delivery attempt is
// isolated: a failed one tears that session down and the loop moves
// on. No subscribers is a no-op returning zero.
func (r *Registry) Broadcast(identity models.Identity, payload []byte) int {
	b, ok := r.buckets.Load(identity)
	if !ok {
		return 0
	}
	bk := b.(*bucket)
	bk.mu.Lock()
	targets := bk.sessions
	bk.mu.Unlock()

	r.logger.Debugf(providers.TypeStream, "Broadcast: identity=%s receivers=%d", identity, len(targets))

	ev := Event{Name: EventStatus, Data: payload}
	for _, s := range targets {
		if !s.deliver(ev) {
			r.failures.Inc()
			r.teardown(s, CauseErrored)
		}
	}
	return len(targets)
}

// Unregister removes a session on graceful completion. Idempotent and
// safe concurrently with Broadcast and with other Unregister calls.
func (r *Registry) Unregister(identity models.Identity, s *Session) {
	if s == nil || s.identity != identity {
		return
	}
	r.teardown(s, CauseCompleted)
}

// Timeout marks a session timed out. Exposed for transports that track
// their own deadlines on top of the registry's.
func (r *Registry) Timeout(s *Session) {
	r.teardown(s, CauseTimedOut)
}

// Fail marks a session errored after a transport-level write failure.
func (r *Registry) Fail(s *Session) {
	r.teardown(s, CauseErrored)
}

func (r *Registry) teardown(s *Session, cause Cause) {
	if !s.terminate(cause) {
		return
	}
	r.remove(s)
	r.live.Dec()
	r.logger.Infof(providers.TypeStream, "Stream teardown: identity=%s cause=%s remaining=%d", s.identity, cause, r.identitySessions(s.identity))
}

func (r *Registry) remove(s *Session) {
	b, ok := r.buckets.Load(s.identity)
	if !ok {
		return
	}
	bk := b.(*bucket)
	bk.mu.Lock()
	defer bk.mu.Unlock()

	next := make([]*Session, 0, len(bk.sessions))
	for _, cur := range bk.sessions {
		if cur != s {
			next = append(next, cur)
		}
	}
	bk.sessions = next
	if len(next) == 0 {
		bk.gone = true
		r.buckets.Delete(s.identity)
	}
}

func (r *Registry) identitySessions(identity models.Identity) int {
	b, ok := r.buckets.Load(identity)
	if !ok {
		return 0
	}
	bk := b.(*bucket)
	bk.mu.Lock()
	defer bk.mu.Unlock()
	return len(bk.sessions)
}

// SessionCount is the number of live sessions across all identities.
func (r *Registry) SessionCount() int {
	return int(r.live.Load())
}

// DeliveryFailures is the total number of failed delivery attempts.
func (r *Registry) DeliveryFailures() int64 {
	return r.failures.Load()
}

// IdentityCount is the number of identities with at least one session.
func (r *Registry) IdentityCount() int {
	count := 0
	r.buckets.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

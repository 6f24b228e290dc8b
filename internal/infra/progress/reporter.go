package progress

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ahmar7/betabase-sub002/internal/entity"
)

const DefaultTTL = 10 * time.Minute

// Reporter fans activation progress out to one live subscriber per session
// and writes every event through to a TTL cache. A client that lost the
// stream polls the snapshot instead of re-subscribing.
type Reporter struct {
	snapshots *gocache.Cache
	ttl       time.Duration

	mu    sync.Mutex
	sinks map[string]chan entity.ActivationProgress
}

func NewReporter(ttl time.Duration) *Reporter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Reporter{
		snapshots: gocache.New(ttl, time.Minute),
		ttl:       ttl,
		sinks:     make(map[string]chan entity.ActivationProgress),
	}
}

// Open registers the live sink for a session. A second Open for the same
// session replaces the previous sink; there is a single reader per session.
func (r *Reporter) Open(sessionID string) <-chan entity.ActivationProgress {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.sinks[sessionID]; ok {
		close(old)
	}
	ch := make(chan entity.ActivationProgress, 64)
	r.sinks[sessionID] = ch
	return ch
}

// Push records the event as the session snapshot and forwards it to the
// live sink when one is attached. A full or missing sink never blocks the
// producer; the snapshot is the reconciliation path. The send happens under
// r.mu so Close and a replacing Open cannot close the channel mid-send.
func (r *Reporter) Push(sessionID string, ev entity.ActivationProgress) {
	ev.SessionID = sessionID
	r.snapshots.Set(sessionID, ev, r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.sinks[sessionID]
	if !ok {
		return
	}

	select {
	case ch <- ev:
	default:
	}
}

// Close detaches and closes the live sink. The snapshot stays until TTL.
func (r *Reporter) Close(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ch, ok := r.sinks[sessionID]; ok {
		close(ch)
		delete(r.sinks, sessionID)
	}
}

// Get returns the last pushed event for the session, or false when the
// session is unknown or already expired.
func (r *Reporter) Get(sessionID string) (entity.ActivationProgress, bool) {
	v, ok := r.snapshots.Get(sessionID)
	if !ok {
		return entity.ActivationProgress{}, false
	}
	ev, ok := v.(entity.ActivationProgress)
	return ev, ok
}

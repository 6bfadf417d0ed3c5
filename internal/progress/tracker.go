package progress

import (
	"context"
	"sync"
	"time"

	"github.com/phuslu/log"
)

// Tracker enforces the one-live-feed-per-session invariant. Frameworks with
// strict re-invocation semantics may request the same observation twice in
// rapid succession; the tracker answers both with the same Feed instead of
// opening a second connection.
type Tracker struct {
	transport Transport
	watchdog  time.Duration
	logger    *log.Logger

	mu    sync.Mutex
	feeds map[string]*Feed
}

// NewTracker creates a Tracker using the given transport for new feeds.
// watchdog <= 0 selects the default processing watchdog.
func NewTracker(transport Transport, watchdog time.Duration, logger *log.Logger) *Tracker {
	if watchdog <= 0 {
		watchdog = Watchdog
	}

	return &Tracker{
		transport: transport,
		watchdog:  watchdog,
		logger:    logger,
		feeds:     make(map[string]*Feed),
	}
}

// Observe returns the live feed for sessionID, starting one if none exists.
// The second return reports whether a feed was already live - callers that
// get an existing feed must not drain it twice.
func (t *Tracker) Observe(ctx context.Context, sessionID string) (*Feed, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if feed, ok := t.feeds[sessionID]; ok {
		return feed, true
	}

	feed := &Feed{
		sessionID: sessionID,
		transport: t.transport,
		watchdog:  t.watchdog,
		logger:    t.logger,
		onDone:    t.forget,
		updates:   make(chan Snapshot, UpdateBuffer),
	}

	t.feeds[sessionID] = feed
	feed.start(ctx)

	return feed, false
}

// Live reports whether a feed currently exists for sessionID.
func (t *Tracker) Live(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.feeds[sessionID]

	return ok
}

// Abandon tears down the feed for sessionID because the caller has genuinely
// left the processing state. No workflow transition results from this; a
// feed that already reached a terminal state is left untouched.
func (t *Tracker) Abandon(sessionID string) {
	t.mu.Lock()
	feed, ok := t.feeds[sessionID]
	t.mu.Unlock()

	if ok {
		feed.close()
	}
}

func (t *Tracker) forget(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.feeds, sessionID)
}

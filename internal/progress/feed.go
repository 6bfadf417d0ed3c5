package progress

import (
	"context"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/joe/validate-sheets/pkg/errors"
)

// Exported constants.
const (
	// Watchdog is the absolute limit for one processing episode, measured
	// from observation start. It is deliberately not reset by intermediate
	// progress: a backend that keeps reporting but never finishes still
	// gets cut off.
	Watchdog = 5 * time.Minute

	// UpdateBuffer is the feed channel buffer. Senders block when the
	// consumer falls this far behind, preserving arrival order.
	UpdateBuffer = 16
)

// Transport delivers raw progress messages for a session. Stream returns nil
// after delivering a terminal message, or an error when the connection broke
// first. Implementations must honor ctx cancellation.
type Transport interface {
	Stream(ctx context.Context, sessionID string, deliver func(Message)) error
}

// FeedState tracks one observation's lifecycle.
type FeedState int

// Exported constants.
const (
	StateConnecting FeedState = iota // no data received yet
	StateActive                      // at least one message applied
	StateCompleted                   // terminal complete signal received
	StateFailed                      // terminal error, transport failure, or watchdog
	StateClosed                      // torn down by the caller, no transition emitted
)

// Feed is the live status feed for one session. A Feed is started once and
// never restarted; a new observation means a new Feed.
//
// All sends on the updates channel, and its close, happen on the single run
// goroutine. The watchdog and caller-side teardown only record state and
// cancel the stream; the run goroutine then finishes up. This is what makes
// "terminal event exactly once, close exactly once" hold under races.
type Feed struct {
	sessionID string
	transport Transport
	watchdog  time.Duration
	logger    *log.Logger
	onDone    func(sessionID string)

	updates chan Snapshot
	cancel  context.CancelFunc
	timer   *time.Timer

	mu    sync.Mutex
	state FeedState
	last  Snapshot
	err   *errors.AppError
}

// Updates returns the snapshot sequence: zero or more progress snapshots
// followed by at most one terminal snapshot, then the channel closes. A feed
// torn down via the tracker closes without a terminal snapshot.
func (f *Feed) Updates() <-chan Snapshot {
	return f.updates
}

// State returns the feed's current lifecycle state.
func (f *Feed) State() FeedState {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}

// Err returns the failure that terminated the feed, or nil.
func (f *Feed) Err() *errors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.err
}

// Last returns the most recent snapshot.
func (f *Feed) Last() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.last
}

// start launches the run goroutine and arms the watchdog.
func (f *Feed) start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	f.cancel = cancel

	f.timer = time.AfterFunc(f.watchdog, func() {
		timeoutErr := errors.New(errors.KindAPI, "Validatie duurde te lang. Probeer opnieuw.")
		timeoutErr.TechnicalDetails = "watchdog elapsed after " + f.watchdog.String()

		f.recordFailure(timeoutErr)
		cancel()
	})

	go f.run(ctx)
}

// run owns the updates channel from first send to close.
func (f *Feed) run(ctx context.Context) {
	streamErr := f.transport.Stream(ctx, f.sessionID, func(msg Message) {
		f.apply(ctx, msg)
	})

	f.timer.Stop()

	f.mu.Lock()

	switch f.state {
	case StateCompleted, StateFailed:
		// Terminal outcome already recorded by apply or the watchdog.
	case StateClosed:
		// Caller abandoned the session: close without a transition.
	default:
		if ctx.Err() != nil {
			// Cancelled from outside without a recorded terminal: treat as
			// abandonment, same as Closed.
			f.state = StateClosed
		} else {
			// The stream broke down before any terminal message.
			appErr := errors.FromTransport(streamErr)
			if appErr.Kind == errors.KindUnknown {
				appErr = errors.New(errors.KindNetwork, "Verbindingsfout tijdens validatie. Controleer je internetverbinding.")
				if streamErr != nil {
					appErr.TechnicalDetails = streamErr.Error()
				}
			}

			f.state = StateFailed
			f.err = appErr
			f.last = f.failedSnapshotLocked(appErr.UserMessage)
		}
	}

	state := f.state
	snap := f.last
	f.mu.Unlock()

	if state == StateCompleted || state == StateFailed {
		f.updates <- snap
	}

	close(f.updates)
	f.cancel()

	if f.onDone != nil {
		f.onDone(f.sessionID)
	}

	if f.logger != nil {
		f.logger.Debug().Str("session_id", f.sessionID).Int("feed_state", int(state)).Msg("progress feed closed")
	}
}

// apply folds one message into the snapshot, wholesale-replace, and emits
// non-terminal updates in arrival order. Terminal messages only record the
// outcome; run emits them after the stream returns. Messages arriving after
// a terminal event are dropped.
func (f *Feed) apply(ctx context.Context, msg Message) {
	f.mu.Lock()

	if f.state != StateConnecting && f.state != StateActive {
		f.mu.Unlock()

		return
	}

	switch msg.Type {
	case MessageProgress:
		status := msg.Status
		if status == "" {
			status = StatusProcessing
		}

		f.state = StateActive
		f.last = Snapshot{
			SessionID:      f.sessionID,
			Status:         status,
			Progress:       clampPercent(msg.Progress),
			Phase:          msg.Phase,
			ProcessedCount: msg.ProcessedCount,
			TotalCount:     msg.TotalCount,
		}
		snap := f.last
		f.mu.Unlock()

		select {
		case f.updates <- snap:
		case <-ctx.Done():
		}

	case MessageComplete:
		// Equal counts signal full completion even when individual
		// progress messages under-reported.
		total := f.last.TotalCount
		f.state = StateCompleted
		f.last = Snapshot{
			SessionID:      f.sessionID,
			Status:         StatusComplete,
			Progress:       100,
			Phase:          "Voltooid",
			ProcessedCount: total,
			TotalCount:     total,
		}
		f.mu.Unlock()

	case MessageError:
		text := msg.Error
		if text == "" {
			text = "Validatie mislukt. Controleer je Excel bestand."
		}

		f.state = StateFailed
		f.err = errors.New(errors.KindAPI, text)
		f.last = f.failedSnapshotLocked(text)
		f.mu.Unlock()

	default:
		f.mu.Unlock()
	}
}

// recordFailure marks the feed failed without emitting; run finishes the
// delivery. No-op once a terminal state or teardown was recorded.
func (f *Feed) recordFailure(appErr *errors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateConnecting && f.state != StateActive {
		return
	}

	f.state = StateFailed
	f.err = appErr
	f.last = f.failedSnapshotLocked(appErr.UserMessage)
}

// close tears the feed down on behalf of a caller that has genuinely
// abandoned the session. No terminal snapshot is emitted: the backend may
// still be finishing and this path must not corrupt anything.
func (f *Feed) close() {
	f.mu.Lock()

	if f.state != StateConnecting && f.state != StateActive {
		f.mu.Unlock()

		return
	}

	f.state = StateClosed
	f.mu.Unlock()

	f.cancel()
}

// failedSnapshotLocked keeps the last known progress and phase so the UI
// does not jump backwards on failure. Caller holds mu.
func (f *Feed) failedSnapshotLocked(message string) Snapshot {
	return Snapshot{
		SessionID:    f.sessionID,
		Status:       StatusFailed,
		Progress:     f.last.Progress,
		Phase:        f.last.Phase,
		ErrorMessage: message,
	}
}

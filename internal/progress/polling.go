package progress

import (
	"context"
	"time"

	"github.com/phuslu/log"

	"github.com/joe/validate-sheets/pkg/api"
)

// PollInterval is how often the polling transport requests a status record.
const PollInterval = 2500 * time.Millisecond

// PollingTransport streams progress by periodically requesting the status
// endpoint. Used where a persistent connection is unavailable; it satisfies
// the same contract as the WebSocket transport.
type PollingTransport struct {
	client   *api.Client
	interval time.Duration
	logger   *log.Logger
}

// NewPollingTransport creates a polling transport. interval <= 0 selects the
// default 2.5s.
func NewPollingTransport(client *api.Client, interval time.Duration, logger *log.Logger) *PollingTransport {
	if interval <= 0 {
		interval = PollInterval
	}

	return &PollingTransport{client: client, interval: interval, logger: logger}
}

// Stream polls until a terminal status arrives. A single failed poll is
// retried with backoff before it is surfaced; only exhausted retries
// terminate the stream.
func (t *PollingTransport) Stream(ctx context.Context, sessionID string, deliver func(Message)) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		var status *api.StatusResult

		err := api.WithRetry(ctx, func() error {
			result, statusErr := t.client.Status(ctx, sessionID)
			if statusErr != nil {
				return statusErr
			}

			status = result

			return nil
		})
		if err != nil {
			return err
		}

		msg := statusMessage(status)
		deliver(msg)

		if msg.Type == MessageComplete || msg.Type == MessageError {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// statusMessage converts one polled status record into the common message
// shape shared with the WebSocket transport.
func statusMessage(status *api.StatusResult) Message {
	switch Status(status.Status) {
	case StatusComplete:
		return Message{Type: MessageComplete}
	case StatusFailed:
		return Message{Type: MessageError, Error: status.Error}
	default:
		// Non-terminal records keep their reported status, so a session
		// that is still queued shows up as queued rather than processing.
		return Message{
			Type:           MessageProgress,
			Status:         Status(status.Status),
			Progress:       status.Progress,
			Phase:          status.Phase,
			ProcessedCount: status.ProcessedCount,
			TotalCount:     status.TotalCount,
		}
	}
}

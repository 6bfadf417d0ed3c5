package progress

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phuslu/log"
)

// socketFrame is the wire shape of one WebSocket progress frame.
type socketFrame struct {
	Type           string `json:"type"`
	Progress       int    `json:"progress"`
	Phase          string `json:"phase"`
	ProcessedCount int    `json:"processed_count"`
	TotalCount     int    `json:"total_count"`
	OutputFileID   string `json:"output_file_id"`
	Error          string `json:"error"`
	Timestamp      string `json:"timestamp"`
}

// WebSocketTransport streams progress over a persistent connection to the
// backend's ws/progress endpoint.
type WebSocketTransport struct {
	urlFor func(sessionID string) string
	dialer *websocket.Dialer
	logger *log.Logger
}

// NewWebSocketTransport creates a transport that dials the URL produced by
// urlFor (typically api.Client.ProgressSocketURL).
func NewWebSocketTransport(urlFor func(sessionID string) string, logger *log.Logger) *WebSocketTransport {
	return &WebSocketTransport{
		urlFor: urlFor,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger: logger,
	}
}

// Stream dials the socket and delivers frames until a terminal frame
// arrives, the connection drops, or ctx is cancelled. Unparseable frames are
// logged and skipped rather than treated as failures.
func (t *WebSocketTransport) Stream(ctx context.Context, sessionID string, deliver func(Message)) error {
	conn, resp, err := t.dialer.DialContext(ctx, t.urlFor(sessionID), nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}

		return err
	}
	defer conn.Close()

	// Unblock the read loop when the caller cancels.
	readDone := make(chan struct{})
	defer close(readDone)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-readDone:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return err
		}

		var frame socketFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			if t.logger != nil {
				t.logger.Warn().Str("session_id", sessionID).Err(err).Msg("skipping unparseable progress frame")
			}

			continue
		}

		msg, known := frameMessage(frame)
		if !known {
			continue
		}

		deliver(msg)

		if msg.Type == MessageComplete || msg.Type == MessageError {
			return nil
		}
	}
}

// frameMessage converts a wire frame into a Message. Unknown frame types are
// reported as not known and skipped by the caller.
func frameMessage(frame socketFrame) (Message, bool) {
	switch MessageType(frame.Type) {
	case MessageProgress:
		return Message{
			Type:           MessageProgress,
			Progress:       frame.Progress,
			Phase:          frame.Phase,
			ProcessedCount: frame.ProcessedCount,
			TotalCount:     frame.TotalCount,
		}, true
	case MessageComplete:
		return Message{Type: MessageComplete, OutputFileID: frame.OutputFileID}, true
	case MessageError:
		return Message{Type: MessageError, Error: frame.Error}, true
	default:
		return Message{}, false
	}
}

// Package progress maintains a live status feed for a processing session.
//
// One Feed exists per observed session. It produces a lazy, non-restartable
// sequence of snapshot updates terminated by exactly one terminal event
// (completed or failed), delivered over a channel that is closed afterwards.
// The underlying transport - a WebSocket connection or periodic polling - is
// pluggable behind the Transport interface and chosen by configuration.
package progress

// Exported constants.
const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

// Status is the backend-reported processing status.
type Status string

// Snapshot is the latest known status for a session. Every update replaces
// the previous snapshot wholesale; fields are never merged individually.
type Snapshot struct {
	SessionID      string
	Status         Status
	Progress       int // always clamped to [0,100] by the receiver
	Phase          string
	ProcessedCount int
	TotalCount     int
	Message        string
	ErrorMessage   string // populated only when Status is failed
}

// Message is one already-parsed frame from the backend progress feed.
// Status is only set by transports that carry one (polling); empty means
// the session is actively processing.
type Message struct {
	Type           MessageType
	Status         Status
	Progress       int
	Phase          string
	ProcessedCount int
	TotalCount     int
	OutputFileID   string
	Error          string
}

// MessageType tags a progress frame.
type MessageType string

// Exported constants.
const (
	MessageProgress MessageType = "progress"
	MessageComplete MessageType = "complete"
	MessageError    MessageType = "error"
)

// clampPercent forces an out-of-range progress value into [0,100]. The
// backend should never send one, but the receiver defends anyway.
func clampPercent(value int) int {
	switch {
	case value < 0:
		return 0
	case value > 100:
		return 100
	default:
		return value
	}
}

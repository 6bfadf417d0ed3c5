package workflow

import (
	"github.com/joe/validate-sheets/internal/progress"
	"github.com/joe/validate-sheets/pkg/errors"
)

// Event is the interface implemented by all workflow events.
type Event interface {
	isEvent()
}

// EventEmitter is the interface for emitting events.
type EventEmitter interface {
	Emit(event Event)
}

// Selection events

// FileRejected is emitted when local validation refuses the selected file.
// The workflow stays in Idle; no network call was made.
type FileRejected struct {
	Filename string
	Err      *errors.AppError
}

func (FileRejected) isEvent() {}

// Upload phase events

// UploadStarted is emitted when the upload request begins.
type UploadStarted struct {
	Filename  string
	SizeBytes int64
}

func (UploadStarted) isEvent() {}

// UploadProgress is emitted as upload bytes go out.
type UploadProgress struct {
	Percent int
}

func (UploadProgress) isEvent() {}

// UploadComplete is emitted when the backend accepted the file and assigned
// a session.
type UploadComplete struct {
	SessionID string
	Filename  string
}

func (UploadComplete) isEvent() {}

// Processing phase events

// ValidationStarted is emitted when backend processing has been enqueued.
type ValidationStarted struct {
	SessionID string
}

func (ValidationStarted) isEvent() {}

// StatusUpdated is emitted for every progress snapshot received while
// processing.
type StatusUpdated struct {
	Snapshot progress.Snapshot
}

func (StatusUpdated) isEvent() {}

// WorkflowComplete is emitted when processing finished and the result is
// ready to download.
type WorkflowComplete struct {
	SessionID        string
	DownloadFilename string
}

func (WorkflowComplete) isEvent() {}

// WorkflowFailed is emitted on any failure that moved the workflow into the
// Error state.
type WorkflowFailed struct {
	Err *errors.AppError
}

func (WorkflowFailed) isEvent() {}

// Download phase events

// DownloadComplete is emitted when the result file has been written locally.
// Cleanup of the backend session happens afterwards, best effort, without
// an event of its own.
type DownloadComplete struct {
	Path      string
	SizeBytes int64
}

func (DownloadComplete) isEvent() {}

// WorkflowReset is emitted when the workflow returned to Idle.
type WorkflowReset struct{}

func (WorkflowReset) isEvent() {}

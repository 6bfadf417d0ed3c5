package workflow

import (
	"context"
	"os"
	"path/filepath"

	"github.com/phuslu/log"

	"github.com/joe/validate-sheets/internal/progress"
	"github.com/joe/validate-sheets/pkg/api"
	"github.com/joe/validate-sheets/pkg/errors"
	"github.com/joe/validate-sheets/pkg/sheetcheck"
)

// Engine drives the workflow against the backend: local file validation,
// upload, validation start, progress observation, download and cleanup. It
// owns the Machine and reports everything else through typed events.
type Engine struct {
	Machine *Machine

	// Config is copied when a run starts; the backend treats it as
	// immutable for the lifetime of the session.
	Config api.ValidationConfig

	// AllowedExtensions is the permitted set for the active variant.
	AllowedExtensions []string

	// DownloadPrefix is prepended to derived download filenames.
	DownloadPrefix string

	// OutputDir is where downloaded results are written. Empty means the
	// current directory.
	OutputDir string

	// RequiredColumns, when non-empty, enables the local workbook header
	// preflight before any upload.
	RequiredColumns []string

	client  *api.Client
	tracker *progress.Tracker
	emitter EventEmitter
	logger  *log.Logger
}

// NewEngine creates an engine around the given transport client and
// progress tracker. Variant-specific fields are set directly on the
// returned engine before the first run.
func NewEngine(client *api.Client, tracker *progress.Tracker, logger *log.Logger) *Engine {
	return &Engine{
		Machine: NewMachine(),
		Config:  api.DefaultValidationConfig(),
		client:  client,
		tracker: tracker,
		logger:  logger,
	}
}

// SetEventEmitter sets the event emitter for TUI communication.
// The emitter is optional - if nil, no events will be emitted.
func (e *Engine) SetEventEmitter(emitter EventEmitter) {
	e.emitter = emitter
}

// emit sends an event if an emitter is configured.
func (e *Engine) emit(event Event) {
	if e.emitter != nil {
		e.emitter.Emit(event)
	}
}

// Run validates the file at path locally and, when it passes, drives the
// full upload-validate-observe cycle to a terminal state. A local rejection
// emits FileRejected and leaves the workflow in Idle.
func (e *Engine) Run(ctx context.Context, path string) error {
	name := filepath.Base(path)

	info, err := os.Stat(path)
	if err != nil {
		appErr := errors.New(errors.KindValidation, "Bestand kon niet worden gelezen.")
		appErr.TechnicalDetails = err.Error()
		e.emit(FileRejected{Filename: name, Err: appErr})

		return appErr
	}

	if appErr := sheetcheck.Check(name, info.Size(), e.AllowedExtensions); appErr != nil {
		e.emit(FileRejected{Filename: name, Err: appErr})

		return appErr
	}

	if len(e.RequiredColumns) > 0 {
		if appErr := sheetcheck.PreflightColumns(path, e.RequiredColumns); appErr != nil {
			e.emit(FileRejected{Filename: name, Err: appErr})

			return appErr
		}
	}

	file := SourceFile{Name: name, SizeBytes: info.Size(), Path: path}
	if err := e.Machine.BeginUpload(file); err != nil {
		return err
	}

	return e.runUpload(ctx, file)
}

// Retry re-invokes the upload cycle with the retained file. It fails when
// the stored error is not recoverable or the file is gone.
func (e *Engine) Retry(ctx context.Context) error {
	file := e.Machine.File()

	if err := e.Machine.Retry(); err != nil {
		return err
	}

	return e.runUpload(ctx, *file)
}

// Reset returns the workflow to Idle from a terminal state.
func (e *Engine) Reset() error {
	if err := e.Machine.Reset(); err != nil {
		return err
	}

	e.emit(WorkflowReset{})

	return nil
}

// Abandon tears down any live progress observation for the session without
// a workflow transition. Used when the caller quits mid-processing; the
// backend may still finish on its own.
func (e *Engine) Abandon() {
	if session := e.Machine.Session(); session != nil {
		e.tracker.Abandon(session.ID)
	}
}

// runUpload performs the network half of the cycle, from Uploading to a
// terminal state. The machine is already in Uploading when this is called.
func (e *Engine) runUpload(ctx context.Context, file SourceFile) error {
	e.emit(UploadStarted{Filename: file.Name, SizeBytes: file.SizeBytes})

	handle, err := os.Open(file.Path)
	if err != nil {
		return e.fail(errors.AsAppError(err))
	}
	defer handle.Close()

	upload, err := e.client.Upload(ctx, handle, file.Name, func(percent int) {
		e.emit(UploadProgress{Percent: percent})
	})
	if err != nil {
		return e.fail(errors.AsAppError(err))
	}

	if err := e.Machine.UploadSucceeded(upload.SessionID); err != nil {
		return err
	}

	e.emit(UploadComplete{SessionID: upload.SessionID, Filename: upload.Filename})

	if _, err := e.client.StartValidation(ctx, upload.SessionID, e.Config); err != nil {
		return e.fail(errors.AsAppError(err))
	}

	e.emit(ValidationStarted{SessionID: upload.SessionID})

	return e.observe(ctx, upload.SessionID, file)
}

// observe drains the progress feed for the session and applies its terminal
// outcome to the machine.
func (e *Engine) observe(ctx context.Context, sessionID string, file SourceFile) error {
	feed, existed := e.tracker.Observe(ctx, sessionID)
	if existed && e.logger != nil {
		e.logger.Debug().Str("session_id", sessionID).Msg("reusing live progress feed")
	}

	for snapshot := range feed.Updates() {
		e.emit(StatusUpdated{Snapshot: snapshot})
	}

	switch feed.State() {
	case progress.StateCompleted:
		if err := e.Machine.Completed(); err != nil {
			return err
		}

		e.emit(WorkflowComplete{
			SessionID:        sessionID,
			DownloadFilename: sheetcheck.DownloadFilename(file.Name, e.DownloadPrefix),
		})

		return nil

	case progress.StateFailed:
		return e.fail(feed.Err())

	default:
		// Closed: the observation was abandoned. No transition; the
		// session may still be finishing in the backend.
		return nil
	}
}

// Download retrieves the finished artifact, writes it under the derived
// name, then fires the cleanup call best effort. The workflow stays in
// Complete regardless of the cleanup outcome, and repeat downloads are
// allowed.
func (e *Engine) Download(ctx context.Context) (string, error) {
	session := e.Machine.Session()
	if session == nil || e.Machine.State() != StateComplete {
		return "", ErrInvalidTransition
	}

	data, err := e.client.Download(ctx, session.ID)
	if err != nil {
		return "", errors.AsAppError(err)
	}

	name := sheetcheck.DownloadFilename(session.File.Name, e.DownloadPrefix)
	path := filepath.Join(e.OutputDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		appErr := errors.New(errors.KindUnknown, "Bestand kon niet worden opgeslagen.")
		appErr.TechnicalDetails = err.Error()

		return "", appErr
	}

	e.emit(DownloadComplete{Path: path, SizeBytes: int64(len(data))})

	// Cleanup is silent: a failure is logged and nothing else. It must
	// never surface, change the workflow state, or block a repeat
	// download.
	if _, err := e.client.Cleanup(ctx, session.ID); err != nil && e.logger != nil {
		e.logger.Warn().Str("session_id", session.ID).Err(err).Msg("session cleanup failed")
	}

	return path, nil
}

// fail applies an error outcome to the machine and reports it.
func (e *Engine) fail(appErr *errors.AppError) error {
	if err := e.Machine.Failed(appErr); err != nil {
		return err
	}

	e.emit(WorkflowFailed{Err: appErr})

	return appErr
}

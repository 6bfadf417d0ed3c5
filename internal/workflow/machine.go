// Package workflow owns the upload-validate-download state machine and the
// engine that drives it against the backend.
package workflow

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/joe/validate-sheets/pkg/errors"
)

// State is the single source of truth for where the user is in the
// pipeline. Exactly one state is active at a time.
type State string

// Exported constants.
const (
	StateIdle       State = "idle"
	StateUploading  State = "uploading"
	StateProcessing State = "processing"
	StateComplete   State = "complete"
	StateError      State = "error"
)

// Exported variables.
var (
	ErrInvalidTransition = stderrors.New("invalid workflow transition")
	ErrNotRetryable      = stderrors.New("error is not retryable")
)

// SourceFile is the locally selected file. It is retained across the Error
// state so a recoverable failure can be retried with the same file, and
// cleared on reset.
type SourceFile struct {
	Name      string
	SizeBytes int64
	Path      string
}

// Session identifies one upload-to-download cycle, assigned by the backend
// on successful upload.
type Session struct {
	ID   string
	File SourceFile
}

// Machine holds the workflow state, the active session, and the latest
// error. All writes are serialized through its mutex; readers get copies.
//
// Invariants: session is non-nil exactly when state is Processing or
// Complete; lastErr is non-nil exactly when state is Error.
type Machine struct {
	mu           sync.Mutex
	state        State
	file         *SourceFile
	session      *Session
	lastErr      *errors.AppError
	onTransition func(from, to State)
}

// NewMachine creates a machine in the Idle state.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// OnTransition registers a callback invoked after every state change, with
// the machine unlocked. Only one callback is supported; later calls
// replace it.
func (m *Machine) OnTransition(callback func(from, to State)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onTransition = callback
}

// State returns the current workflow state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Session returns a copy of the active session, or nil outside Processing
// and Complete.
func (m *Machine) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil
	}

	session := *m.session

	return &session
}

// File returns a copy of the retained source file, or nil when none is
// held.
func (m *Machine) File() *SourceFile {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file == nil {
		return nil
	}

	file := *m.file

	return &file
}

// LastError returns the stored error, or nil outside the Error state.
func (m *Machine) LastError() *errors.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastErr
}

// CanRetry reports whether a retry action may be offered: the error must be
// recoverable and the original file still held.
func (m *Machine) CanRetry() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state == StateError && m.lastErr != nil && m.lastErr.Recoverable && m.file != nil
}

// BeginUpload moves Idle to Uploading for a file that passed local
// validation. The file is retained for retry and filename derivation.
func (m *Machine) BeginUpload(file SourceFile) error {
	return m.transition(StateIdle, StateUploading, func() {
		m.file = &file
		m.session = nil
		m.lastErr = nil
	})
}

// UploadSucceeded moves Uploading to Processing and records the session the
// backend assigned.
func (m *Machine) UploadSucceeded(sessionID string) error {
	return m.transition(StateUploading, StateProcessing, func() {
		m.session = &Session{ID: sessionID, File: *m.file}
	})
}

// Completed moves Processing to Complete. The session stays available for
// downloads.
func (m *Machine) Completed() error {
	return m.transition(StateProcessing, StateComplete, nil)
}

// Failed moves Uploading or Processing to Error and stores the error. The
// source file is kept so a recoverable error can be retried.
func (m *Machine) Failed(appErr *errors.AppError) error {
	m.mu.Lock()

	if m.state != StateUploading && m.state != StateProcessing {
		state := m.state
		m.mu.Unlock()

		return fmt.Errorf("%w: cannot fail from %s", ErrInvalidTransition, state)
	}

	from := m.state
	m.state = StateError
	m.session = nil
	m.lastErr = appErr
	callback := m.onTransition
	m.mu.Unlock()

	if callback != nil {
		callback(from, StateError)
	}

	return nil
}

// Retry moves Error back to Uploading with the retained file. Allowed only
// when the stored error is recoverable and the file is still held.
func (m *Machine) Retry() error {
	m.mu.Lock()

	if m.state != StateError {
		state := m.state
		m.mu.Unlock()

		return fmt.Errorf("%w: cannot retry from %s", ErrInvalidTransition, state)
	}

	if m.lastErr == nil || !m.lastErr.Recoverable || m.file == nil {
		m.mu.Unlock()

		return ErrNotRetryable
	}

	m.state = StateUploading
	m.lastErr = nil
	callback := m.onTransition
	m.mu.Unlock()

	if callback != nil {
		callback(StateError, StateUploading)
	}

	return nil
}

// Reset moves Complete or Error back to Idle, clearing the session, the
// file, and the error.
func (m *Machine) Reset() error {
	m.mu.Lock()

	if m.state != StateComplete && m.state != StateError {
		state := m.state
		m.mu.Unlock()

		return fmt.Errorf("%w: cannot reset from %s", ErrInvalidTransition, state)
	}

	from := m.state
	m.state = StateIdle
	m.session = nil
	m.file = nil
	m.lastErr = nil
	callback := m.onTransition
	m.mu.Unlock()

	if callback != nil {
		callback(from, StateIdle)
	}

	return nil
}

// transition performs a single-source-state transition, running mutate with
// the lock held and the observer callback without it. Invalid events are
// rejected without mutation.
func (m *Machine) transition(from, to State, mutate func()) error {
	m.mu.Lock()

	if m.state != from {
		state := m.state
		m.mu.Unlock()

		return fmt.Errorf("%w: %s -> %s not allowed from %s", ErrInvalidTransition, from, to, state)
	}

	m.state = to

	if mutate != nil {
		mutate()
	}

	callback := m.onTransition
	m.mu.Unlock()

	if callback != nil {
		callback(from, to)
	}

	return nil
}

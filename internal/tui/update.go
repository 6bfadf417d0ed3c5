package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/validate-sheets/internal/tui/shared"
	"github.com/joe/validate-sheets/internal/workflow"
	"github.com/joe/validate-sheets/pkg/errors"
)

const maxBarWidth = 60

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		barWidth := msg.Width - 10
		if barWidth > maxBarWidth {
			barWidth = maxBarWidth
		}
		if barWidth > 0 {
			m.bar.Width = barWidth
		}

		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case shared.WorkflowEventMsg:
		return m.updateEvent(msg.Event)

	case RunFinishedMsg:
		// Failures normally arrive as WorkflowFailed events; this message
		// only catches runs that ended before the machine was involved.
		if msg.Err != nil && m.phase != "error" && m.phase != "complete" && m.phase != "done" {
			m.appErr = errors.AsAppError(msg.Err)
			m.phase = "error"
		}

		return m, nil

	case DownloadFinishedMsg:
		if msg.Err != nil {
			// The workflow stays Complete; the download can simply be
			// tried again.
			m.downloadErr = msg.Err

			return m, nil
		}

		m.downloadErr = nil
		m.downloadPath = msg.Path
		m.phase = "done"

		return m, nil
	}

	return m, nil
}

// updateKey handles key presses per phase.
func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		m.engine.Abandon()

		return m, tea.Quit

	case "enter":
		switch m.phase {
		case "confirm":
			m.phase = "uploading"

			return m, m.startRunCmd()
		case "complete":
			return m, m.downloadCmd()
		case "done", "error":
			m.quitting = true

			return m, tea.Quit
		}

	case "d":
		// Repeat downloads of a completed session are allowed.
		if m.phase == "complete" || m.phase == "done" {
			return m, m.downloadCmd()
		}

	case "r":
		if m.phase == "error" && m.engine.Machine.CanRetry() {
			m.appErr = nil
			m.phase = "uploading"
			m.uploadPercent = 0

			return m, m.retryCmd()
		}

	case "esc":
		if m.phase == "error" || m.phase == "done" {
			m.quitting = true

			return m, tea.Quit
		}
	}

	return m, nil
}

// updateEvent folds one workflow event into the model and keeps listening.
func (m Model) updateEvent(event workflow.Event) (tea.Model, tea.Cmd) {
	switch event := event.(type) {
	case workflow.FileRejected:
		m.appErr = event.Err
		m.phase = "error"

	case workflow.UploadStarted:
		m.phase = "uploading"
		m.uploadPercent = 0

	case workflow.UploadProgress:
		m.uploadPercent = event.Percent

	case workflow.ValidationStarted:
		m.phase = "validating"

	case workflow.StatusUpdated:
		m.phase = "validating"
		m.snapshot = event.Snapshot

	case workflow.WorkflowComplete:
		m.phase = "complete"
		m.downloadName = event.DownloadFilename

	case workflow.WorkflowFailed:
		m.appErr = event.Err
		m.phase = "error"

	case workflow.DownloadComplete:
		m.downloadPath = event.Path
		m.phase = "done"

	case workflow.WorkflowReset:
		m.phase = "confirm"
		m.appErr = nil
		m.uploadPercent = 0
	}

	return m, m.bridge.ListenCmd()
}

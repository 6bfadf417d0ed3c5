// Package tui renders the single-screen flow: confirm the selected file,
// watch upload and validation progress, then download the result.
package tui

import (
	"context"
	"os"
	"path/filepath"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joe/validate-sheets/internal/config"
	"github.com/joe/validate-sheets/internal/progress"
	"github.com/joe/validate-sheets/internal/tui/shared"
	"github.com/joe/validate-sheets/internal/workflow"
	"github.com/joe/validate-sheets/pkg/errors"
)

// Model represents the TUI state
type Model struct {
	// Configuration
	config *config.Config
	engine *workflow.Engine
	bridge *shared.EventBridge

	// Selected file, resolved once at startup
	fileName string
	fileSize int64

	// Live progress
	uploadPercent int
	snapshot      progress.Snapshot
	appErr        *errors.AppError
	downloadName  string
	downloadPath  string
	downloadErr   *errors.AppError

	bar      progressbar.Model
	spinner  spinner.Model
	width    int
	height   int
	phase    string // "confirm", "uploading", "validating", "complete", "done", "error"
	quitting bool
}

// RunFinishedMsg is sent when the engine run returns.
type RunFinishedMsg struct {
	Err error
}

// DownloadFinishedMsg is sent when the download attempt returns.
type DownloadFinishedMsg struct {
	Path string
	Err  *errors.AppError
}

// NewModel creates a new TUI model
func NewModel(cfg *config.Config, engine *workflow.Engine, bridge *shared.EventBridge) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bar := progressbar.New(
		progressbar.WithDefaultGradient(),
	)

	var size int64
	if info, err := os.Stat(cfg.File); err == nil {
		size = info.Size()
	}

	return Model{
		config:   cfg,
		engine:   engine,
		bridge:   bridge,
		fileName: filepath.Base(cfg.File),
		fileSize: size,
		bar:      bar,
		spinner:  s,
		phase:    "confirm",
	}
}

// Phase returns the current phase (for testing)
func (m Model) Phase() string {
	return m.phase
}

// Failed reports whether the flow ended in the error phase.
func (m Model) Failed() bool {
	return m.phase == "error"
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.bridge.ListenCmd())
}

// startRunCmd kicks off the full upload-validate cycle. Progress arrives
// through the event bridge; the returned message only closes the loop.
func (m Model) startRunCmd() tea.Cmd {
	engine := m.engine
	path := m.config.File

	return func() tea.Msg {
		return RunFinishedMsg{Err: engine.Run(context.Background(), path)}
	}
}

// retryCmd re-runs the upload with the retained file.
func (m Model) retryCmd() tea.Cmd {
	engine := m.engine

	return func() tea.Msg {
		return RunFinishedMsg{Err: engine.Retry(context.Background())}
	}
}

// downloadCmd fetches the finished artifact and writes it locally.
func (m Model) downloadCmd() tea.Cmd {
	engine := m.engine

	return func() tea.Msg {
		path, err := engine.Download(context.Background())
		if err != nil {
			return DownloadFinishedMsg{Err: errors.AsAppError(err)}
		}

		return DownloadFinishedMsg{Path: path}
	}
}

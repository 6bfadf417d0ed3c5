// Package main is the entry point for the validate-sheets application.
package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/phuslu/log"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/validate-sheets/internal/config"
	"github.com/joe/validate-sheets/internal/progress"
	"github.com/joe/validate-sheets/internal/tui"
	"github.com/joe/validate-sheets/internal/tui/shared"
	"github.com/joe/validate-sheets/internal/workflow"
	"github.com/joe/validate-sheets/pkg/api"
	"github.com/joe/validate-sheets/pkg/sheetcheck"
)

func main() {
	// Parse configuration
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogFile)

	client := api.New(cfg.ServerURL, logger)

	var transport progress.Transport
	if cfg.Transport == config.Polling {
		transport = progress.NewPollingTransport(client, progress.PollInterval, logger)
	} else {
		transport = progress.NewWebSocketTransport(client.ProgressSocketURL, logger)
	}

	tracker := progress.NewTracker(transport, progress.Watchdog, logger)

	engine := workflow.NewEngine(client, tracker, logger)
	engine.Config = cfg.ValidationConfig()
	engine.AllowedExtensions = cfg.Variant.AllowedExtensions()
	engine.DownloadPrefix = cfg.Variant.DownloadPrefix()
	engine.OutputDir = cfg.OutputDir

	if cfg.Preflight && cfg.Variant == config.BAG {
		engine.RequiredColumns = sheetcheck.RequiredColumns
	}

	bridge := shared.NewEventBridge()
	defer bridge.Close()

	engine.SetEventEmitter(bridge)

	model := tui.NewModel(cfg, engine, bridge)

	// Only use alt screen if stdout is a TTY
	var opts []tea.ProgramOption
	if term.IsTerminal(int(os.Stdout.Fd())) {
		opts = append(opts, tea.WithAltScreen())
	}

	p := tea.NewProgram(model, opts...)

	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if finalModel, ok := final.(tui.Model); ok && finalModel.Failed() {
		os.Exit(1)
	}
}

// newLogger writes debug logs to the given file, or nowhere when no file is
// configured. Logs never go to the terminal; the TUI owns it.
func newLogger(path string) *log.Logger {
	if path == "" {
		return &log.Logger{Level: log.InfoLevel, Writer: log.IOWriter{Writer: io.Discard}}
	}

	return &log.Logger{
		Level:      log.DebugLevel,
		TimeFormat: "15:04:05",
		Writer: &log.FileWriter{
			Filename:   path,
			MaxSize:    10 << 20,
			MaxBackups: 2,
		},
	}
}

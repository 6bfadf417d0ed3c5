// Package shared holds pieces used by the TUI that are independent of any
// particular screen.
package shared

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/validate-sheets/internal/workflow"
)

// WorkflowEventMsg wraps a workflow.Event for use as a tea.Msg.
type WorkflowEventMsg struct {
	Event workflow.Event
}

// EventBridge adapts workflow events to bubble tea messages.
// It implements workflow.EventEmitter and provides a channel for TUI consumption.
// Emit and Close share a mutex: the engine emits from its own goroutine and
// must never race a concurrent Close onto a closed channel.
type EventBridge struct {
	mu        sync.Mutex
	eventChan chan tea.Msg
	closed    bool
}

// NewEventBridge creates a new event bridge.
func NewEventBridge() *EventBridge {
	return &EventBridge{
		eventChan: make(chan tea.Msg, 100), // Buffer to prevent blocking the engine
	}
}

// Emit implements workflow.EventEmitter.
// It wraps the event in WorkflowEventMsg and sends to the channel.
func (b *EventBridge) Emit(event workflow.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	// Non-blocking send - if channel is full, skip event
	select {
	case b.eventChan <- WorkflowEventMsg{Event: event}:
	default:
		// Channel full, event dropped
	}
}

// Subscribe returns the event channel for receiving events.
func (b *EventBridge) Subscribe() <-chan tea.Msg {
	return b.eventChan
}

// ListenCmd returns a tea.Cmd that blocks until an event is received.
// Use this in Init() or after processing an event to continue listening.
func (b *EventBridge) ListenCmd() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-b.eventChan
		if !ok {
			return nil // Channel closed
		}
		return msg
	}
}

// Close closes the event channel.
// Call this when done with the bridge.
func (b *EventBridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.eventChan)
	}
}

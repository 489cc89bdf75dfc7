// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for the voice session UI
package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Control carries requests from the TUI back to main
type Control struct {
	Quit chan struct{}

	quitOnce sync.Once
}

// NewControl creates a new control handle
func NewControl() *Control {
	return &Control{Quit: make(chan struct{})}
}

// RequestQuit closes Quit. Safe to call more than once or on a nil Control.
func (c *Control) RequestQuit() {
	if c == nil {
		return
	}
	c.quitOnce.Do(func() { close(c.Quit) })
}

// NewModel creates a new TUI model
func NewModel(ctrl *Control) Model {
	return Model{
		state:   "idle",
		control: ctrl,
	}
}

// Run creates the TUI program; the caller starts it
func Run(ctrl *Control) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	return p, nil
}

// ABOUTME: Bubbletea model for the voice session TUI
// ABOUTME: Defines session state, transcript history and update logic
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxTranscriptLines is how many transcript lines stay on screen
const MaxTranscriptLines = 8

// Model represents the TUI state
type Model struct {
	// Session
	state      string
	deployment string
	voice      string
	lastError  string

	// Conversation
	transcript []string

	// Stats
	captured  int64
	dropped   int64
	sent      int64
	received  int64
	played    int64
	responses int64
	errors    int64
	queued    int

	// Debug
	showDebug  bool
	goroutines int
	memAlloc   uint64

	control *Control

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case TranscriptMsg:
		m.addTranscript(msg.Text)
	case ErrorMsg:
		m.lastError = msg.Text
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderTranscript()
	s += m.renderStats()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders session status
func (m Model) renderHeader() string {
	stateIcon := "○"
	switch m.state {
	case "active":
		stateIcon = "●"
	case "connecting", "draining":
		stateIcon = "◐"
	}

	status := fmt.Sprintf("%s %s", stateIcon, m.state)
	if m.deployment != "" {
		status += fmt.Sprintf(" (%s)", m.deployment)
	}

	voice := m.voice
	if voice == "" {
		voice = "-"
	}

	return fmt.Sprintf(`┌─ Resonate Voice ─────────────────────────────────────┐
│ Status: %-44s │
│ Voice:  %-44s │
├──────────────────────────────────────────────────────┤
`, truncate(status, 44), truncate(voice, 44))
}

// renderTranscript renders recent user transcripts
func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "│ Speak to start the conversation                      │\n"
	}

	s := ""
	for _, line := range m.transcript {
		s += fmt.Sprintf("│ [you]: %-45s │\n", truncate(line, 45))
	}
	return s
}

// renderStats renders pipeline statistics
func (m Model) renderStats() string {
	s := fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Mic:      captured %-8d sent %-8d dropped %-5d│
│ Speaker:  received %-8d played %-6d queued %-6d│
│ Replies:  %-6d Errors: %-29d│
`, m.captured, m.sent, m.dropped, m.received, m.played, m.queued, m.responses, m.errors)

	if m.lastError != "" {
		s += fmt.Sprintf("│ Last error: %-40s │\n", truncate(m.lastError, 40))
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ c:Clear  d:Debug  q:Quit                             │
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders runtime information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Goroutines: %-38d │
│   Heap: %-44s │
`, m.goroutines, formatBytes(m.memAlloc))
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.control.RequestQuit()
		return m, tea.Quit
	case "c":
		m.transcript = nil
		m.lastError = ""
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Deployment != "" {
		m.deployment = msg.Deployment
	}
	if msg.Voice != "" {
		m.voice = msg.Voice
	}
	if msg.Stats != nil {
		m.captured = msg.Stats.Captured
		m.dropped = msg.Stats.Dropped
		m.sent = msg.Stats.Sent
		m.received = msg.Stats.Received
		m.played = msg.Stats.Played
		m.responses = msg.Stats.Responses
		m.errors = msg.Stats.Errors
		m.queued = msg.Stats.Queued
	}
	if msg.Goroutines != 0 {
		m.goroutines = msg.Goroutines
		m.memAlloc = msg.MemAlloc
	}
}

// addTranscript appends a line, keeping the most recent ones
func (m *Model) addTranscript(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	m.transcript = append(m.transcript, text)
	if len(m.transcript) > MaxTranscriptLines {
		m.transcript = m.transcript[len(m.transcript)-MaxTranscriptLines:]
	}
}

// StatusMsg updates TUI state. Zero fields are left unchanged.
type StatusMsg struct {
	State      string
	Deployment string
	Voice      string
	Stats      *StatsMsg
	Goroutines int
	MemAlloc   uint64
}

// StatsMsg carries pipeline counters
type StatsMsg struct {
	Captured  int64
	Dropped   int64
	Sent      int64
	Received  int64
	Played    int64
	Responses int64
	Errors    int64
	Queued    int
}

// TranscriptMsg adds a user transcript line
type TranscriptMsg struct {
	Text string
}

// ErrorMsg shows the latest service error
type ErrorMsg struct {
	Text string
}

// Utility functions

// truncate limits s to length runes so multi-byte text is never split
func truncate(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length-3]) + "..."
}

func formatBytes(n uint64) string {
	const mb = 1024 * 1024
	if n >= mb {
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	}
	return fmt.Sprintf("%.1f KB", float64(n)/1024)
}

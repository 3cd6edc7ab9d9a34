package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"sheetscribe/internal/config"
	"sheetscribe/internal/domain"
	"sheetscribe/internal/eventbus"
)

// inputMode tracks which control currently owns keyboard input
type inputMode int

const (
	modeNormal inputMode = iota
	modeSearch
	modeThreshold
)

// Model represents the UI state
type Model struct {
	bus    eventbus.EventBus
	config *config.Config
	styles *Styles

	width  int
	height int

	mode      inputMode
	textInput textinput.Model

	connState  domain.ConnState
	transcript string
	status     string
	threshold  int
	matchCount int
	lastError  bool
}

// NewModel creates a new UI model
func NewModel(bus eventbus.EventBus, cfg *config.Config) *Model {
	ti := textinput.New()
	ti.CharLimit = 256

	return &Model{
		bus:       bus,
		config:    cfg,
		styles:    NewStyles(),
		textInput: ti,
		connState: domain.ConnDisconnected,
		threshold: cfg.AutoSearchThreshold,
		status:    "Not connected.",
	}
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m.updateInput(msg)
		}
		return m.handleKey(msg)

	case EventMsg:
		m.handleEvent(msg.Event)
	}

	return m, nil
}

// handleKey processes normal-mode key presses
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "c":
		m.setStatus(fmt.Sprintf("Connecting to %s ...", m.config.Endpoint), false)
		m.bus.Publish(eventbus.ConnectRequestedEvent{})

	case "d":
		m.bus.Publish(eventbus.DisconnectRequestedEvent{})

	case "/", "s":
		m.mode = modeSearch
		m.textInput.Placeholder = "search term"
		m.textInput.SetValue("")
		m.textInput.Focus()
		return m, textinput.Blink

	case "x":
		m.bus.Publish(eventbus.ClearRequestedEvent{})

	case "t":
		m.mode = modeThreshold
		m.textInput.Placeholder = "auto-search threshold"
		m.textInput.SetValue(strconv.Itoa(m.threshold))
		m.textInput.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

// updateInput processes key presses while a text prompt is active
func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.textInput.Blur()
		return m, nil

	case "enter":
		value := m.textInput.Value()
		mode := m.mode
		m.mode = modeNormal
		m.textInput.Blur()
		m.commitInput(mode, value)
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// commitInput applies a submitted prompt value
func (m *Model) commitInput(mode inputMode, value string) {
	switch mode {
	case modeSearch:
		// Blank input is a no-op, same as the highlight routine itself
		if strings.TrimSpace(value) == "" {
			return
		}
		m.setStatus(fmt.Sprintf("Searching for “%s” ...", value), false)
		m.bus.Publish(eventbus.HighlightRequestedEvent{Term: value})

	case modeThreshold:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			m.setStatus("Threshold must be a non-negative number.", true)
			return
		}
		m.threshold = n
		m.setStatus(fmt.Sprintf("Auto-search threshold set to %d.", n), false)
		m.bus.Publish(eventbus.ThresholdChangedEvent{Threshold: n})
	}
}

// handleEvent applies a forwarded domain event to the view state
func (m *Model) handleEvent(event eventbus.DomainEvent) {
	switch e := event.(type) {
	case eventbus.ConnectionOpenedEvent:
		m.connState = domain.ConnConnected
		m.setStatus(fmt.Sprintf("Connected to %s.", e.Endpoint), false)

	case eventbus.ConnectionClosedEvent:
		m.connState = domain.ConnDisconnected
		m.setStatus("Disconnected.", false)

	case eventbus.ConnectionFailedEvent:
		m.connState = domain.ConnDisconnected
		m.setStatus("Could not connect to transcription server.", true)

	case eventbus.TranscriptUpdatedEvent:
		m.transcript = e.Text

	case eventbus.ThresholdChangedEvent:
		m.threshold = e.Threshold

	case eventbus.HighlightCompletedEvent:
		m.matchCount = e.MatchCount
		m.setStatus(e.Status, false)

	case eventbus.HighlightsClearedEvent:
		m.matchCount = 0
		m.setStatus("Highlights cleared.", false)

	case eventbus.ErrorEvent:
		m.setStatus(e.Message, true)
	}
}

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.lastError = isError
}

// View renders the UI
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("sheetscribe"))
	b.WriteString("\n")

	conn := m.styles.Disconnected.Render("● disconnected")
	if m.connState == domain.ConnConnected {
		conn = m.styles.Connected.Render("● connected")
	}
	b.WriteString(fmt.Sprintf("%s  %s\n", conn, m.styles.Dim.Render(m.config.Endpoint)))
	b.WriteString(m.styles.Dim.Render(fmt.Sprintf("auto-search at %d chars", m.threshold)))
	b.WriteString("\n\n")

	transcript := m.transcript
	if transcript == "" {
		transcript = m.styles.Dim.Render("(waiting for transcript)")
	}
	b.WriteString(m.styles.TranscriptBox.Render(transcript))
	b.WriteString("\n")

	if m.matchCount > 0 {
		b.WriteString(m.styles.Match.Render(fmt.Sprintf("%d cell(s) highlighted", m.matchCount)))
		b.WriteString("\n")
	}

	if m.mode != modeNormal {
		b.WriteString(m.styles.Prompt.Render(m.textInput.View()))
		b.WriteString("\n")
	}

	statusStyle := m.styles.Status
	if m.lastError {
		statusStyle = m.styles.StatusError
	}
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Help.Render("c connect · d disconnect · / search · x clear highlights · t threshold · q quit"))

	return m.styles.Main.Render(b.String())
}

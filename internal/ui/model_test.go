package ui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"sheetscribe/internal/config"
	"sheetscribe/internal/domain"
	"sheetscribe/internal/eventbus"
)

func newTestModel(t *testing.T) (*Model, eventbus.EventBus) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	bus := eventbus.New(logger)
	cfg := config.DefaultConfig()
	return NewModel(bus, cfg), bus
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func published(t *testing.T, bus eventbus.EventBus, et eventbus.EventType) chan eventbus.DomainEvent {
	t.Helper()
	ch := make(chan eventbus.DomainEvent, 4)
	bus.Subscribe(et, func(e eventbus.DomainEvent) {
		ch <- e
	})
	return ch
}

func requireEvent(t *testing.T, ch chan eventbus.DomainEvent) eventbus.DomainEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestConnectKeyPublishesRequest(t *testing.T) {
	m, bus := newTestModel(t)
	requests := published(t, bus, eventbus.EventConnectRequested)

	m.Update(keyMsg("c"))
	requireEvent(t, requests)
}

func TestClearKeyPublishesRequest(t *testing.T) {
	m, bus := newTestModel(t)
	requests := published(t, bus, eventbus.EventClearRequested)

	m.Update(keyMsg("x"))
	requireEvent(t, requests)
}

func TestSearchPromptPublishesHighlightRequest(t *testing.T) {
	m, bus := newTestModel(t)
	requests := published(t, bus, eventbus.EventHighlightRequested)

	m.Update(keyMsg("/"))
	require.Equal(t, modeSearch, m.mode)

	for _, r := range "apple" {
		m.Update(keyMsg(string(r)))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	e := requireEvent(t, requests)
	require.Equal(t, "apple", e.(eventbus.HighlightRequestedEvent).Term)
	require.Equal(t, modeNormal, m.mode)
}

func TestSearchPromptBlankIsNoOp(t *testing.T) {
	m, bus := newTestModel(t)
	requests := published(t, bus, eventbus.EventHighlightRequested)

	m.Update(keyMsg("/"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	select {
	case e := <-requests:
		t.Fatalf("unexpected event: %#v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestThresholdPromptPublishesChange(t *testing.T) {
	m, bus := newTestModel(t)
	changes := published(t, bus, eventbus.EventThresholdChanged)

	m.Update(keyMsg("t"))
	require.Equal(t, modeThreshold, m.mode)

	m.textInput.SetValue("25")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	e := requireEvent(t, changes)
	require.Equal(t, 25, e.(eventbus.ThresholdChangedEvent).Threshold)
	require.Equal(t, 25, m.threshold)
}

func TestThresholdPromptRejectsGarbage(t *testing.T) {
	m, bus := newTestModel(t)
	changes := published(t, bus, eventbus.EventThresholdChanged)
	before := m.threshold

	m.Update(keyMsg("t"))
	m.textInput.SetValue("lots")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	select {
	case e := <-changes:
		t.Fatalf("unexpected event: %#v", e)
	case <-time.After(100 * time.Millisecond):
	}
	require.Equal(t, before, m.threshold)
	require.True(t, m.lastError)
}

func TestEventsUpdateViewState(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(EventMsg{Event: eventbus.ConnectionOpenedEvent{Endpoint: "wss://localhost:8000/ws/transcribe"}})
	require.Equal(t, domain.ConnConnected, m.connState)

	m.Update(EventMsg{Event: eventbus.TranscriptUpdatedEvent{Text: "hello world"}})
	require.Equal(t, "hello world", m.transcript)

	m.Update(EventMsg{Event: eventbus.HighlightCompletedEvent{
		Term:       "an",
		MatchCount: 1,
		Status:     "Found 1 match(es) for “an”.",
	}})
	require.Equal(t, 1, m.matchCount)
	require.Equal(t, "Found 1 match(es) for “an”.", m.status)

	m.Update(EventMsg{Event: eventbus.ConnectionClosedEvent{Local: false}})
	require.Equal(t, domain.ConnDisconnected, m.connState)
	require.Equal(t, "Disconnected.", m.status)

	m.Update(EventMsg{Event: eventbus.ConnectionFailedEvent{}})
	require.True(t, m.lastError)
}

func TestViewShowsTranscriptAndHelp(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(EventMsg{Event: eventbus.TranscriptUpdatedEvent{Text: "quarterly results"}})
	view := m.View()
	require.Contains(t, view, "sheetscribe")
	require.Contains(t, view, "quarterly results")
	require.Contains(t, view, "q quit")
}

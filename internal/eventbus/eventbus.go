package eventbus

import (
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"

	"sheetscribe/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventConnectRequested    = domain.EventConnectRequested
	EventDisconnectRequested = domain.EventDisconnectRequested
	EventConnectionOpened    = domain.EventConnectionOpened
	EventConnectionClosed    = domain.EventConnectionClosed
	EventConnectionFailed    = domain.EventConnectionFailed
	EventTranscriptUpdated   = domain.EventTranscriptUpdated
	EventThresholdChanged    = domain.EventThresholdChanged
	EventHighlightRequested  = domain.EventHighlightRequested
	EventHighlightCompleted  = domain.EventHighlightCompleted
	EventClearRequested      = domain.EventClearRequested
	EventHighlightsCleared   = domain.EventHighlightsCleared
	EventError               = domain.EventError
)

// Re-export domain event types
type ConnectRequestedEvent = domain.ConnectRequestedEvent
type DisconnectRequestedEvent = domain.DisconnectRequestedEvent
type ConnectionOpenedEvent = domain.ConnectionOpenedEvent
type ConnectionClosedEvent = domain.ConnectionClosedEvent
type ConnectionFailedEvent = domain.ConnectionFailedEvent
type TranscriptUpdatedEvent = domain.TranscriptUpdatedEvent
type ThresholdChangedEvent = domain.ThresholdChangedEvent
type HighlightRequestedEvent = domain.HighlightRequestedEvent
type HighlightCompletedEvent = domain.HighlightCompletedEvent
type ClearRequestedEvent = domain.ClearRequestedEvent
type HighlightsClearedEvent = domain.HighlightsClearedEvent
type ErrorEvent = domain.ErrorEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
}

// bus is the concrete implementation of EventBus
type bus struct {
	mu        sync.RWMutex
	logger    *logrus.Entry
	handlers  map[EventType]map[int]EventHandler
	nextID    int
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
}

// New creates a new event bus
func New(logger *logrus.Logger) EventBus {
	b := &bus{
		logger:    logger.WithField("component", "eventbus"),
		handlers:  make(map[EventType]map[int]EventHandler),
		eventChan: make(chan DomainEvent, 1000),
		quit:      make(chan struct{}),
	}

	// Start the event dispatcher
	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish publishes an event to all subscribers
func (b *bus) Publish(event DomainEvent) {
	// Transcript updates arrive on every socket frame, too frequent to log
	if event.Type() != EventTranscriptUpdated {
		b.logger.Debugf("publishing event %s", event.Type())
	}

	select {
	case b.eventChan <- event:
	default:
		// Channel full, log and drop
		b.logger.Warnf("event bus channel full, dropping event: %v", event.Type())
	}
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[int]EventHandler)
	}
	// Handlers are keyed by a stable ID so unsubscribing one never shifts
	// the others.
	id := b.nextID
	b.nextID++
	b.handlers[eventType][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[eventType], id)
	}
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.mu.RLock()
			// Copy so the lock isn't held during handler execution
			handlersCopy := make([]EventHandler, 0, len(b.handlers[event.Type()]))
			for _, h := range b.handlers[event.Type()] {
				handlersCopy = append(handlersCopy, h)
			}
			b.mu.RUnlock()

			for _, handler := range handlersCopy {
				// Call handler in a goroutine to avoid blocking the dispatcher
				go func(h EventHandler, eventType EventType) {
					defer func() {
						if r := recover(); r != nil {
							b.logger.Errorf("event handler panic for %s: %v\nstack: %s", eventType, r, debug.Stack())
						}
					}()
					h(event)
				}(handler, event.Type())
			}

		case <-b.quit:
			// Drain remaining events
			for {
				select {
				case <-b.eventChan:
				default:
					return
				}
			}
		}
	}
}

package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventConnectRequested    EventType = "ConnectRequested"
	EventDisconnectRequested EventType = "DisconnectRequested"
	EventConnectionOpened    EventType = "ConnectionOpened"
	EventConnectionClosed    EventType = "ConnectionClosed"
	EventConnectionFailed    EventType = "ConnectionFailed"
	EventTranscriptUpdated   EventType = "TranscriptUpdated"
	EventThresholdChanged    EventType = "ThresholdChanged"
	EventHighlightRequested  EventType = "HighlightRequested"
	EventHighlightCompleted  EventType = "HighlightCompleted"
	EventClearRequested      EventType = "ClearRequested"
	EventHighlightsCleared   EventType = "HighlightsCleared"
	EventError               EventType = "Error"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// ConnectRequestedEvent is emitted when the user asks to open the transcription connection
type ConnectRequestedEvent struct{}

func (e ConnectRequestedEvent) Type() EventType { return EventConnectRequested }

// DisconnectRequestedEvent is emitted when the user asks to close the transcription connection
type DisconnectRequestedEvent struct{}

func (e DisconnectRequestedEvent) Type() EventType { return EventDisconnectRequested }

// ConnectionOpenedEvent is emitted when the socket connection is established
type ConnectionOpenedEvent struct {
	Endpoint string
}

func (e ConnectionOpenedEvent) Type() EventType { return EventConnectionOpened }

// ConnectionClosedEvent is emitted when the connection closes, locally or by the remote end
type ConnectionClosedEvent struct {
	Local bool
}

func (e ConnectionClosedEvent) Type() EventType { return EventConnectionClosed }

// ConnectionFailedEvent is emitted when dialing the transcription server fails
type ConnectionFailedEvent struct {
	Err error
}

func (e ConnectionFailedEvent) Type() EventType { return EventConnectionFailed }

// TranscriptUpdatedEvent is emitted when a partial transcript replaces the buffer
type TranscriptUpdatedEvent struct {
	Text string
}

func (e TranscriptUpdatedEvent) Type() EventType { return EventTranscriptUpdated }

// ThresholdChangedEvent is emitted when the auto-search threshold control changes
type ThresholdChangedEvent struct {
	Threshold int
}

func (e ThresholdChangedEvent) Type() EventType { return EventThresholdChanged }

// HighlightRequestedEvent is emitted to request a match-and-highlight pass
type HighlightRequestedEvent struct {
	Term string
}

func (e HighlightRequestedEvent) Type() EventType { return EventHighlightRequested }

// HighlightCompletedEvent is emitted when a match-and-highlight pass finishes
type HighlightCompletedEvent struct {
	Term       string
	MatchCount int
	First      *CellRef // nil when no matches
	Status     string
}

func (e HighlightCompletedEvent) Type() EventType { return EventHighlightCompleted }

// ClearRequestedEvent is emitted to request removal of all highlight fills
type ClearRequestedEvent struct{}

func (e ClearRequestedEvent) Type() EventType { return EventClearRequested }

// HighlightsClearedEvent is emitted when highlight fills have been removed
type HighlightsClearedEvent struct{}

func (e HighlightsClearedEvent) Type() EventType { return EventHighlightsCleared }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

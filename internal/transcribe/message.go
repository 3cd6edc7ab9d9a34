package transcribe

import (
	"github.com/goccy/go-json"
)

// Message is a decoded transcription server frame. The wire protocol is JSON
// text frames tagged by a "type" field; everything that fails to decode into
// a known variant becomes UnknownMessage and is dropped by the caller.
type Message interface {
	isMessage()
}

// PartialMessage carries an incremental, possibly-revised transcript
type PartialMessage struct {
	Text string
}

// StatusMessage carries a server-side status note, e.g. "connected"
type StatusMessage struct {
	Message string
}

// UnknownMessage is anything malformed or of unrecognized shape
type UnknownMessage struct{}

func (PartialMessage) isMessage() {}
func (StatusMessage) isMessage()  {}
func (UnknownMessage) isMessage() {}

type envelope struct {
	Type    string  `json:"type"`
	Text    *string `json:"text"`
	Message *string `json:"message"`
}

// DecodeMessage maps a wire frame to a message variant. A frame is only a
// PartialMessage when "type" is "partial" and "text" is a string; likewise
// for "status" and "message".
func DecodeMessage(data []byte) Message {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return UnknownMessage{}
	}
	switch env.Type {
	case "partial":
		if env.Text == nil {
			return UnknownMessage{}
		}
		return PartialMessage{Text: *env.Text}
	case "status":
		if env.Message == nil {
			return UnknownMessage{}
		}
		return StatusMessage{Message: *env.Message}
	}
	return UnknownMessage{}
}

package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

// Client to server.
const (
	MessageTypeConnect MessageType = "connect"
	MessageTypeMove    MessageType = "move"
	MessageTypeResign  MessageType = "resign"
)

// Server to client.
const (
	MessageTypeWelcome             MessageType = "welcome"
	MessageTypeGameState           MessageType = "gameState"
	MessageTypeIllegalMove         MessageType = "illegalMove"
	MessageTypeUnrecognizedMessage MessageType = "unrecognizedMessage"
	MessageTypeUnrecognizedPlayer  MessageType = "unrecognizedPlayer"
	MessageTypeGameOver            MessageType = "gameOver"
	MessageTypeMatchFound          MessageType = "matchFound"
	MessageTypeError               MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage marshals payload into a Message. A nil payload is omitted.
func NewMessage(t MessageType, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: t}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

// TextMessage wraps a plain string payload.
func TextMessage(t MessageType, text string) Message {
	raw, _ := json.Marshal(text)
	return Message{Type: t, Payload: raw}
}

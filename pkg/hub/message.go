// Package hub fans out dashboard updates to websocket clients using a
// single goroutine that owns the client set.
package hub

// MessageType indicates the websocket frame type.
type MessageType int

const (
	// TextMessage is a JSON-encoded event.
	TextMessage MessageType = iota
	// BinaryMessage is raw binary data (JPEG frames).
	BinaryMessage
)

// Message is one broadcast payload.
type Message struct {
	Type MessageType
	Data []byte
}

// NewTextMessage wraps pre-encoded JSON.
func NewTextMessage(data []byte) Message {
	return Message{Type: TextMessage, Data: data}
}

// NewBinaryMessage wraps binary data.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}

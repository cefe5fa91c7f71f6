// Package models contains domain types for the docchat frontend.
package models

import "time"

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// MessageKind distinguishes regular bubbles from transient placeholders.
type MessageKind string

const (
	MessageKindText   MessageKind = "text"
	MessageKindTyping MessageKind = "typing"
	MessageKindError  MessageKind = "error"
)

// Message is one entry of the visible chat history.
type Message struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Kind      MessageKind `json:"kind"`
	Text      string      `json:"text,omitempty"`
	Subject   string      `json:"subject,omitempty"` // document name shown bold verbatim
	CreatedAt time.Time   `json:"createdAt"`
}

// IsTyping reports whether the message is a typing indicator.
func (m Message) IsTyping() bool {
	return m.Kind == MessageKindTyping
}

package router

import "encoding/json"

// Client-to-server events.
const (
	EventJoin           = "join"
	EventPrivateMessage = "private_message"
	EventTyping         = "typing"
	EventStopTyping     = "stop_typing"
)

// Server-to-client events.
const (
	EventNewMessage     = "new_message"
	EventMessageSent    = "message_sent"
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
)

// ClientMessage is the envelope for inbound WebSocket frames.
type ClientMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage is the envelope for outbound WebSocket frames.
type ServerMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// TypingNotice is the payload of user_typing / user_stop_typing frames.
type TypingNotice struct {
	FromUserID   string `json:"fromUserId"`
	FromUserName string `json:"fromUserName"`
}

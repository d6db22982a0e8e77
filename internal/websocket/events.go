package websocket

import "encoding/json"

// Event is anything the hub can deliver to a subscriber. Serialization to
// the wire happens in the client write pump, not in the hub.
type Event interface {
	EventType() string
}

// UserMessageEvent fans a just-persisted user message out to a room.
type UserMessageEvent struct {
	Type      string   `json:"type"`
	RoomID    uint     `json:"roomId"`
	Sender    string   `json:"sender"`
	UserID    *uint    `json:"user_id"`
	Timestamp string   `json:"timestamp"`
	Emotion   string   `json:"emotion"`
	ImageURL  string   `json:"imageUrl"`
	ImageURLs []string `json:"imageUrls"`
	Message   string   `json:"message"`
}

func (UserMessageEvent) EventType() string { return "user_message" }

// AIMessageEvent fans an AI reply (or a synthesized failure reply) out to a
// room.
type AIMessageEvent struct {
	Type               string   `json:"type"`
	RoomID             uint     `json:"roomId"`
	Sender             string   `json:"sender"`
	AIName             string   `json:"ai_name"`
	Timestamp          string   `json:"timestamp"`
	QuestionerUsername string   `json:"questioner_username"`
	Message            string   `json:"message"`
	ImageURLs          []string `json:"imageUrls"`
}

func (AIMessageEvent) EventType() string { return "ai_message" }

// RoomListData is the payload of a room_list_update event.
type RoomListData struct {
	Type     string `json:"type"` // room_created | room_deleted | user_joined | user_left
	RoomID   uint   `json:"roomId"`
	RoomName string `json:"roomName,omitempty"`
	Username string `json:"username,omitempty"`
}

// RoomListEvent carries room metadata changes on the room_list pseudo-room.
type RoomListEvent struct {
	Type string       `json:"type"`
	Data RoomListData `json:"data"`
}

func (RoomListEvent) EventType() string { return "room_list_update" }

// ErrorEvent is sent to a single originator, never broadcast.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (ErrorEvent) EventType() string { return "error" }

func NewErrorEvent(message string) ErrorEvent {
	return ErrorEvent{Type: "error", Message: message}
}

// RawEvent mirrors an inbound frame (WebRTC signaling) without reencoding;
// the payload is opaque to the hub.
type RawEvent json.RawMessage

func (RawEvent) EventType() string { return "raw" }

package websocket

import (
	"encoding/json"
	"strings"
)

// Inbound frame kinds. A frame with no type field is a chat frame.
const (
	FrameJoinRoom           = "join_room"
	FrameChatMessage        = "chat_message"
	FrameOffer              = "offer"
	FrameAnswer             = "answer"
	FrameCandidate          = "candidate"
	FrameIceCandidate       = "ice_candidate"
	FrameParticipantsUpdate = "participants_update"
)

// Frame is one decoded inbound client message. Signaling payloads stay in
// Raw so they can be mirrored to the room untouched.
type Frame struct {
	Type   string `json:"type"`
	RoomID uint   `json:"roomId"`

	// Chat frame fields.
	Message   string          `json:"message"`
	Emotion   string          `json:"emotion"`
	ImageURL  string          `json:"imageUrl"`
	ImageURLs []string        `json:"imageUrls"`
	Documents []DocumentRef   `json:"documents"`
	AISetting ClientAISetting `json:"-"`

	Raw json.RawMessage `json:"-"`
}

// DocumentRef names one uploaded document for RAG-capable providers.
type DocumentRef struct {
	DocumentID string `json:"document_id"`
}

// ClientAISetting is the per-frame provider override. It wins over stored
// user preferences for the turn it arrives with.
type ClientAISetting struct {
	AIProvider  string `json:"aiProvider"`
	LilyAPIURL  string `json:"lilyApiUrl"`
	LilyModel   string `json:"lilyModel"`
	GeminiModel string `json:"geminiModel"`
}

// DecodeFrame parses one inbound frame. It fails only on undecodable JSON;
// field-level validation is the dispatcher's job.
func DecodeFrame(data []byte) (*Frame, error) {
	frame := &Frame{}
	if err := json.Unmarshal(data, frame); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &frame.AISetting); err != nil {
		return nil, err
	}
	frame.Raw = json.RawMessage(data)

	// Legacy clients send a single imageUrl instead of the list.
	if len(frame.ImageURLs) == 0 && frame.ImageURL != "" {
		frame.ImageURLs = []string{frame.ImageURL}
	}
	return frame, nil
}

// IsChat reports whether the frame should enter the chat pipeline.
func (f *Frame) IsChat() bool {
	return f.Type == "" || f.Type == FrameChatMessage
}

// IsSignaling reports whether the frame is WebRTC signaling to be mirrored
// to the room without persistence.
func (f *Frame) IsSignaling() bool {
	switch f.Type {
	case FrameOffer, FrameAnswer, FrameCandidate, FrameIceCandidate, FrameParticipantsUpdate:
		return true
	}
	return false
}

// HasContent reports whether the chat frame carries anything worth
// persisting.
func (f *Frame) HasContent() bool {
	return strings.TrimSpace(f.Message) != "" || len(f.ImageURLs) > 0
}

package contract

import (
	"context"

	"hearth-chat-be/internal/model"
)

// SaveUserMessageParams carries one inbound user utterance.
type SaveUserMessageParams struct {
	RoomID    uint
	UserID    *uint
	Username  string
	Content   string
	Emotion   string
	ImageURLs []string
}

// SaveAIMessageParams carries one AI reply (or a synthesized error reply).
type SaveAIMessageParams struct {
	RoomID            uint
	Content           string
	AIName            string
	AIProvider        string
	QuestionMessageID *uint
	ImageURLs         []string
}

// RoomAISettings are the per-room provider defaults, when configured.
type RoomAISettings struct {
	Provider string
	Model    string
}

type MessageRepository interface {
	// SaveUserMessage persists a user row. Content is normalized to NFC and
	// the timestamp is assigned server-side.
	SaveUserMessage(ctx context.Context, params SaveUserMessageParams) (*model.Message, error)

	// SaveAIMessage persists an ai row. QuestionMessageID, when set, must
	// reference an existing user row in the same room.
	SaveAIMessage(ctx context.Context, params SaveAIMessageParams) (*model.Message, error)

	// GetRoomMessages pages a room's history ascending by (timestamp, id).
	GetRoomMessages(ctx context.Context, roomID uint, offset, limit int) ([]*model.Message, error)

	// GetRoomAISettings returns the room's provider defaults, nil when the
	// room has none.
	GetRoomAISettings(ctx context.Context, roomID uint) (*RoomAISettings, error)
}

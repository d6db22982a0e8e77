package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SenderTypeUser   = "user"
	SenderTypeAI     = "ai"
	SenderTypeSystem = "system"
)

// Message is an append-only chat record. Content is immutable once written.
type Message struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID     uint   `gorm:"not null;index:idx_messages_room_ts,priority:1" json:"room_id"`
	SenderType string `gorm:"type:varchar(10);not null" json:"sender_type"`

	// User rows
	UserID   *uint  `gorm:"index" json:"user_id,omitempty"`
	Username string `gorm:"type:varchar(150)" json:"username,omitempty"`

	// AI rows
	AIName     string `gorm:"type:varchar(100)" json:"ai_name,omitempty"`
	AIProvider string `gorm:"type:varchar(50)" json:"ai_provider,omitempty"`

	// Content must survive the full supplementary unicode plane (emoji).
	Content string `gorm:"type:text;not null" json:"content"`
	Emotion string `gorm:"type:varchar(20)" json:"emotion,omitempty"`

	ImageURLs datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"image_urls,omitempty"`

	// Back-reference from an ai row to the user row that triggered it.
	QuestionMessageID *uint    `gorm:"index" json:"question_message_id,omitempty"`
	QuestionMessage   *Message `gorm:"foreignKey:QuestionMessageID" json:"-"`

	Timestamp time.Time `gorm:"not null;index:idx_messages_room_ts,priority:2" json:"timestamp"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Message) TableName() string {
	return "chat_messages"
}

package model

import (
	"time"

	"gorm.io/datatypes"
)

// UserSettings holds the per-user AI preferences the orchestrator reads on
// every AI turn. A default row is upserted on first read.
type UserSettings struct {
	UserID            uint   `gorm:"primaryKey" json:"user_id"`
	AIProvider        string `gorm:"type:varchar(50)" json:"ai_provider,omitempty"`
	AIResponseEnabled bool   `gorm:"default:true" json:"ai_response_enabled"`
	GeminiModel       string `gorm:"type:varchar(100)" json:"gemini_model,omitempty"`
	LilyModel         string `gorm:"type:varchar(100)" json:"lily_model,omitempty"`
	LilyAPIURL        string `gorm:"type:varchar(255)" json:"lily_api_url,omitempty"`

	// Client-managed extras, JSON wins over the scalar columns when both
	// carry a value.
	AISettings datatypes.JSON `gorm:"type:jsonb" json:"ai_settings,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserSettings) TableName() string {
	return "chat_user_settings"
}

package model

import "time"

const (
	RoomTypeAI       = "ai"
	RoomTypeOneToOne = "one_to_one"
	RoomTypeGroup    = "group"
	RoomTypePublic   = "public"
	RoomTypeVoice    = "voice"
)

type Room struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"type:varchar(200);not null" json:"name"`
	RoomType   string `gorm:"type:varchar(20);not null;default:'group'" json:"room_type"`
	IsPublic   bool   `gorm:"default:false" json:"is_public"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`
	AIProvider string `gorm:"type:varchar(50)" json:"ai_provider,omitempty"`
	AIModel    string `gorm:"type:varchar(100)" json:"ai_model,omitempty"`

	Participants []RoomParticipant `gorm:"foreignKey:RoomID" json:"participants,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Room) TableName() string {
	return "chat_rooms"
}

type RoomParticipant struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID   uint      `gorm:"not null;uniqueIndex:idx_room_participant" json:"room_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_room_participant" json:"user_id"`
	Username string    `gorm:"type:varchar(150)" json:"username"`
	IsOwner  bool      `gorm:"default:false" json:"is_owner"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (RoomParticipant) TableName() string {
	return "chat_room_participants"
}

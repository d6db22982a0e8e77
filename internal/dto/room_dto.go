package dto

import "time"

type CreateRoomRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	RoomType   string `json:"room_type" validate:"omitempty,oneof=ai one_to_one group public voice"`
	IsPublic   bool   `json:"is_public"`
	AIProvider string `json:"ai_provider" validate:"omitempty,oneof=gemini lily gradio"`
	AIModel    string `json:"ai_model" validate:"omitempty,max=100"`
}

type RoomParticipantResponse struct {
	UserID   uint      `json:"user_id"`
	Username string    `json:"username"`
	IsOwner  bool      `json:"is_owner"`
	JoinedAt time.Time `json:"joined_at"`
}

type RoomResponse struct {
	Id           uint                      `json:"id"`
	Name         string                    `json:"name"`
	RoomType     string                    `json:"room_type"`
	IsPublic     bool                      `json:"is_public"`
	AIProvider   string                    `json:"ai_provider,omitempty"`
	AIModel      string                    `json:"ai_model,omitempty"`
	Participants []RoomParticipantResponse `json:"participants,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
}

package dto

type MessageResponse struct {
	Id                uint     `json:"id"`
	RoomId            uint     `json:"roomId"`
	SenderType        string   `json:"sender_type"`
	Sender            string   `json:"sender"`
	UserId            *uint    `json:"user_id,omitempty"`
	AIProvider        string   `json:"ai_provider,omitempty"`
	Message           string   `json:"message"`
	Emotion           string   `json:"emotion,omitempty"`
	ImageUrls         []string `json:"imageUrls,omitempty"`
	QuestionMessageId *uint    `json:"question_message_id,omitempty"`
	Timestamp         string   `json:"timestamp"`
}

package events

import "time"

// Chat event codes published to the bus for downstream consumers
// (analytics, moderation, archival).
const (
	TypeMessageSaved = "CHAT_MESSAGE_SAVED"
	TypeAIFailed     = "CHAT_AI_FAILED"
)

// NewMessageSaved reports a persisted chat message.
func NewMessageSaved(roomID, messageID uint, senderType, provider string) Event {
	return BaseEvent{
		Type: TypeMessageSaved,
		Data: map[string]interface{}{
			"room_id":     roomID,
			"message_id":  messageID,
			"sender_type": senderType,
			"provider":    provider,
		},
		OccurredAt: time.Now(),
	}
}

// NewAIFailed reports a provider call that ended in a synthesized error
// reply.
func NewAIFailed(roomID uint, provider, reason string) Event {
	return BaseEvent{
		Type: TypeAIFailed,
		Data: map[string]interface{}{
			"room_id":  roomID,
			"provider": provider,
			"reason":   reason,
		},
		OccurredAt: time.Now(),
	}
}

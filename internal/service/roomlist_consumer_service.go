package service

import (
	"context"
	"encoding/json"

	"hearth-chat-be/internal/pkg/logger"
	"hearth-chat-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IRoomListConsumerService interface {
	Consume(ctx context.Context) error
}

// roomListConsumerService drains the lobby topic and fans the events out
// to every socket subscribed to the room_list pseudo-room.
type roomListConsumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
	logger    logger.ILogger
}

func NewRoomListConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	log logger.ILogger,
) IRoomListConsumerService {
	return &roomListConsumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		logger:    log,
	}
}

func (cs *roomListConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *roomListConsumerService) processMessage(msg *message.Message) {
	var payload RoomListEventPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Warn("RoomListConsumer", "Undecodable lobby event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.hub.BroadcastRoomList(websocket.RoomListEvent{
		Type: "room_list_update",
		Data: websocket.RoomListData{
			Type:     payload.Type,
			RoomID:   payload.RoomID,
			RoomName: payload.RoomName,
			Username: payload.Username,
		},
	})
	msg.Ack()
}

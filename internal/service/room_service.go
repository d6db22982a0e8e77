package service

import (
	"context"
	"errors"
	"time"

	"hearth-chat-be/internal/dto"
	"hearth-chat-be/internal/model"
	"hearth-chat-be/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
)

// Room list event kinds published on the lobby topic.
const (
	RoomEventCreated    = "room_created"
	RoomEventDeleted    = "room_deleted"
	RoomEventUserJoined = "user_joined"
	RoomEventUserLeft   = "user_left"
)

// RoomListEventPayload travels over the in-process bus from the room
// service to the lobby broadcaster.
type RoomListEventPayload struct {
	Type     string `json:"type"`
	RoomID   uint   `json:"roomId"`
	RoomName string `json:"roomName,omitempty"`
	Username string `json:"username,omitempty"`
}

type IRoomService interface {
	Create(ctx context.Context, userID uint, username string, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	Show(ctx context.Context, id, userID uint) (*dto.RoomResponse, error)
	GetAll(ctx context.Context, publicOnly bool) ([]*dto.RoomResponse, error)
	Join(ctx context.Context, roomID, userID uint, username string) error
	Delete(ctx context.Context, roomID, userID uint) error
	History(ctx context.Context, roomID, userID uint, offset, limit int) ([]*dto.MessageResponse, error)
}

type roomService struct {
	roomRepo         contract.RoomRepository
	messageRepo      contract.MessageRepository
	publisherService IPublisherService
}

func NewRoomService(
	roomRepo contract.RoomRepository,
	messageRepo contract.MessageRepository,
	publisherService IPublisherService,
) IRoomService {
	return &roomService{
		roomRepo:         roomRepo,
		messageRepo:      messageRepo,
		publisherService: publisherService,
	}
}

func (s *roomService) Create(ctx context.Context, userID uint, username string, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	roomType := req.RoomType
	if roomType == "" {
		roomType = model.RoomTypeGroup
	}

	room := &model.Room{
		Name:       req.Name,
		RoomType:   roomType,
		IsPublic:   req.IsPublic,
		IsActive:   true,
		AIProvider: req.AIProvider,
		AIModel:    req.AIModel,
	}
	if err := s.roomRepo.Create(ctx, room, userID, username); err != nil {
		return nil, err
	}

	s.publishRoomEvent(ctx, RoomListEventPayload{
		Type:     RoomEventCreated,
		RoomID:   room.ID,
		RoomName: room.Name,
		Username: username,
	})

	return toRoomResponse(room), nil
}

func (s *roomService) Show(ctx context.Context, id, userID uint) (*dto.RoomResponse, error) {
	room, err := s.roomRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, contract.ErrNoSuchRoom) {
			return nil, fiber.NewError(fiber.StatusNotFound, "room not found")
		}
		return nil, err
	}
	if err := s.requireMember(ctx, room, userID); err != nil {
		return nil, err
	}
	return toRoomResponse(room), nil
}

func (s *roomService) GetAll(ctx context.Context, publicOnly bool) ([]*dto.RoomResponse, error) {
	rooms, err := s.roomRepo.FindAll(ctx, publicOnly)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, toRoomResponse(room))
	}
	return result, nil
}

func (s *roomService) Join(ctx context.Context, roomID, userID uint, username string) error {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, contract.ErrNoSuchRoom) {
			return fiber.NewError(fiber.StatusNotFound, "room not found")
		}
		return err
	}

	// Join-by-anyone applies to public rooms only; a private room admits
	// nobody new through this endpoint.
	if err := s.requireMember(ctx, room, userID); err != nil {
		return err
	}

	if err := s.roomRepo.AddParticipant(ctx, roomID, userID, username); err != nil {
		return err
	}

	s.publishRoomEvent(ctx, RoomListEventPayload{
		Type:     RoomEventUserJoined,
		RoomID:   room.ID,
		RoomName: room.Name,
		Username: username,
	})
	return nil
}

func (s *roomService) Delete(ctx context.Context, roomID, userID uint) error {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, contract.ErrNoSuchRoom) {
			return fiber.NewError(fiber.StatusNotFound, "room not found")
		}
		return err
	}

	owner := false
	for _, p := range room.Participants {
		if p.UserID == userID && p.IsOwner {
			owner = true
			break
		}
	}
	if !owner {
		return fiber.NewError(fiber.StatusForbidden, "only the room owner can delete it")
	}

	if err := s.roomRepo.Delete(ctx, roomID); err != nil {
		return err
	}

	s.publishRoomEvent(ctx, RoomListEventPayload{
		Type:     RoomEventDeleted,
		RoomID:   room.ID,
		RoomName: room.Name,
	})
	return nil
}

func (s *roomService) History(ctx context.Context, roomID, userID uint, offset, limit int) ([]*dto.MessageResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, contract.ErrNoSuchRoom) {
			return nil, fiber.NewError(fiber.StatusNotFound, "room not found")
		}
		return nil, err
	}
	if err := s.requireMember(ctx, room, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.GetRoomMessages(ctx, roomID, offset, limit)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		result = append(result, toMessageResponse(m))
	}
	return result, nil
}

// requireMember rejects access to a non-public room by anyone who is not
// already a participant.
func (s *roomService) requireMember(ctx context.Context, room *model.Room, userID uint) error {
	if room.IsPublic {
		return nil
	}
	member, err := s.roomRepo.IsParticipant(ctx, room.ID, userID)
	if err != nil {
		return err
	}
	if !member {
		return fiber.NewError(fiber.StatusForbidden, "room is private")
	}
	return nil
}

func (s *roomService) publishRoomEvent(ctx context.Context, payload RoomListEventPayload) {
	// Lobby updates are best-effort; a dropped event only stales the list.
	_ = s.publisherService.Publish(ctx, payload)
}

func toRoomResponse(room *model.Room) *dto.RoomResponse {
	res := &dto.RoomResponse{
		Id:         room.ID,
		Name:       room.Name,
		RoomType:   room.RoomType,
		IsPublic:   room.IsPublic,
		AIProvider: room.AIProvider,
		AIModel:    room.AIModel,
		CreatedAt:  room.CreatedAt,
	}
	for _, p := range room.Participants {
		res.Participants = append(res.Participants, dto.RoomParticipantResponse{
			UserID:   p.UserID,
			Username: p.Username,
			IsOwner:  p.IsOwner,
			JoinedAt: p.JoinedAt,
		})
	}
	return res
}

func toMessageResponse(m *model.Message) *dto.MessageResponse {
	sender := m.Username
	if m.SenderType == model.SenderTypeAI {
		sender = m.AIName
	}
	return &dto.MessageResponse{
		Id:                m.ID,
		RoomId:            m.RoomID,
		SenderType:        m.SenderType,
		Sender:            sender,
		UserId:            m.UserID,
		AIProvider:        m.AIProvider,
		Message:           m.Content,
		Emotion:           m.Emotion,
		ImageUrls:         m.ImageURLs,
		QuestionMessageId: m.QuestionMessageID,
		Timestamp:         m.Timestamp.Format(time.RFC3339),
	}
}

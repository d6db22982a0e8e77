package contract

import (
	"context"

	"hearth-chat-be/internal/model"
)

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room, ownerID uint, ownerName string) error
	FindByID(ctx context.Context, id uint) (*model.Room, error)
	FindAll(ctx context.Context, publicOnly bool) ([]*model.Room, error)
	AddParticipant(ctx context.Context, roomID, userID uint, username string) error
	IsParticipant(ctx context.Context, roomID, userID uint) (bool, error)
	Delete(ctx context.Context, id uint) error
}

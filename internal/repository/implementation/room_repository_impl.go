package implementation

import (
	"context"
	"errors"

	"hearth-chat-be/internal/model"
	"hearth-chat-be/internal/repository/contract"
	"hearth-chat-be/internal/repository/scope"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepositoryImpl struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) contract.RoomRepository {
	return &RoomRepositoryImpl{db: db}
}

func (r *RoomRepositoryImpl) Create(ctx context.Context, room *model.Room, ownerID uint, ownerName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		participant := &model.RoomParticipant{
			RoomID:   room.ID,
			UserID:   ownerID,
			Username: ownerName,
			IsOwner:  true,
		}
		return tx.Create(participant).Error
	})
}

func (r *RoomRepositoryImpl) FindByID(ctx context.Context, id uint) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).Scopes(scope.ActiveRooms).Preload("Participants").First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, contract.ErrNoSuchRoom
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *RoomRepositoryImpl) FindAll(ctx context.Context, publicOnly bool) ([]*model.Room, error) {
	var rooms []*model.Room
	query := r.db.WithContext(ctx).Scopes(scope.ActiveRooms)
	if publicOnly {
		query = query.Scopes(scope.PublicRooms)
	}
	if err := query.Scopes(scope.OrderByCreatedDesc).Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *RoomRepositoryImpl) AddParticipant(ctx context.Context, roomID, userID uint, username string) error {
	participant := &model.RoomParticipant{
		RoomID:   roomID,
		UserID:   userID,
		Username: username,
	}
	// Join is idempotent.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(participant).Error
}

func (r *RoomRepositoryImpl) IsParticipant(ctx context.Context, roomID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RoomParticipant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *RoomRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hearth-chat-be/internal/model"
	"hearth-chat-be/internal/repository/contract"

	"golang.org/x/text/unicode/norm"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{db: db}
}

func (r *MessageRepositoryImpl) SaveUserMessage(ctx context.Context, params contract.SaveUserMessageParams) (*model.Message, error) {
	if err := r.ensureRoom(ctx, params.RoomID); err != nil {
		return nil, err
	}

	m := &model.Message{
		RoomID:     params.RoomID,
		SenderType: model.SenderTypeUser,
		UserID:     params.UserID,
		Username:   params.Username,
		Content:    norm.NFC.String(params.Content),
		Emotion:    params.Emotion,
		ImageURLs:  datatypes.NewJSONSlice(params.ImageURLs),
		Timestamp:  time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}
	return m, nil
}

func (r *MessageRepositoryImpl) SaveAIMessage(ctx context.Context, params contract.SaveAIMessageParams) (*model.Message, error) {
	if err := r.ensureRoom(ctx, params.RoomID); err != nil {
		return nil, err
	}

	if params.QuestionMessageID != nil {
		var question model.Message
		err := r.db.WithContext(ctx).
			Where("id = ? AND room_id = ? AND sender_type = ?",
				*params.QuestionMessageID, params.RoomID, model.SenderTypeUser).
			First(&question).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contract.ErrNoSuchQuestion
		}
		if err != nil {
			return nil, fmt.Errorf("load question message: %w", err)
		}
	}

	m := &model.Message{
		RoomID:            params.RoomID,
		SenderType:        model.SenderTypeAI,
		AIName:            params.AIName,
		AIProvider:        params.AIProvider,
		Content:           norm.NFC.String(params.Content),
		ImageURLs:         datatypes.NewJSONSlice(params.ImageURLs),
		QuestionMessageID: params.QuestionMessageID,
		Timestamp:         time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("save ai message: %w", err)
	}
	return m, nil
}

func (r *MessageRepositoryImpl) GetRoomMessages(ctx context.Context, roomID uint, offset, limit int) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("timestamp ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepositoryImpl) GetRoomAISettings(ctx context.Context, roomID uint) (*contract.RoomAISettings, error) {
	var room model.Room
	err := r.db.WithContext(ctx).First(&room, roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, contract.ErrNoSuchRoom
	}
	if err != nil {
		return nil, err
	}
	if room.AIProvider == "" {
		return nil, nil
	}
	return &contract.RoomAISettings{Provider: room.AIProvider, Model: room.AIModel}, nil
}

func (r *MessageRepositoryImpl) ensureRoom(ctx context.Context, roomID uint) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ? AND is_active = true", roomID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("lookup room: %w", err)
	}
	if count == 0 {
		return contract.ErrNoSuchRoom
	}
	return nil
}

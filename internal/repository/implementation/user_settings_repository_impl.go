package implementation

import (
	"context"
	"errors"

	"hearth-chat-be/internal/model"
	"hearth-chat-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserSettingsRepositoryImpl struct {
	db *gorm.DB
}

func NewUserSettingsRepository(db *gorm.DB) contract.UserSettingsRepository {
	return &UserSettingsRepositoryImpl{db: db}
}

func (r *UserSettingsRepositoryImpl) Get(ctx context.Context, userID uint) (*model.UserSettings, error) {
	var settings model.UserSettings
	err := r.db.WithContext(ctx).First(&settings, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = model.UserSettings{
			UserID:            userID,
			AIResponseEnabled: true,
		}
		if err := r.db.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *UserSettingsRepositoryImpl) Upsert(ctx context.Context, settings *model.UserSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(settings).Error
}

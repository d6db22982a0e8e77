package contract

import (
	"context"

	"hearth-chat-be/internal/model"
)

type UserSettingsRepository interface {
	// Get returns the user's settings, creating the default row on first
	// read.
	Get(ctx context.Context, userID uint) (*model.UserSettings, error)
	Upsert(ctx context.Context, settings *model.UserSettings) error
}

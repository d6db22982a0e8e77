package service

import (
	"context"

	"hearth-chat-be/internal/dto"
	"hearth-chat-be/internal/model"
	"hearth-chat-be/internal/repository/contract"
	"hearth-chat-be/internal/repository/memory"

	"gorm.io/datatypes"
)

type ISettingsService interface {
	Get(ctx context.Context, userID uint) (*dto.SettingsResponse, error)
	Update(ctx context.Context, userID uint, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)

	// Preferences returns the raw settings row for the orchestrator,
	// served from the in-memory cache when fresh.
	Preferences(ctx context.Context, userID uint) (*model.UserSettings, error)
}

type settingsService struct {
	repo  contract.UserSettingsRepository
	cache *memory.SettingsCache
}

func NewSettingsService(repo contract.UserSettingsRepository, cache *memory.SettingsCache) ISettingsService {
	return &settingsService{
		repo:  repo,
		cache: cache,
	}
}

func (s *settingsService) Preferences(ctx context.Context, userID uint) (*model.UserSettings, error) {
	if cached, ok := s.cache.Get(userID); ok {
		return cached, nil
	}

	settings, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Save(settings)
	return settings, nil
}

func (s *settingsService) Get(ctx context.Context, userID uint) (*dto.SettingsResponse, error) {
	settings, err := s.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(settings), nil
}

func (s *settingsService) Update(ctx context.Context, userID uint, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	settings, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.AIProvider != nil {
		settings.AIProvider = *req.AIProvider
	}
	if req.AIResponseEnabled != nil {
		settings.AIResponseEnabled = *req.AIResponseEnabled
	}
	if req.GeminiModel != nil {
		settings.GeminiModel = *req.GeminiModel
	}
	if req.LilyModel != nil {
		settings.LilyModel = *req.LilyModel
	}
	if req.LilyAPIURL != nil {
		settings.LilyAPIURL = *req.LilyAPIURL
	}
	if len(req.AISettings) > 0 {
		settings.AISettings = datatypes.JSON(req.AISettings)
	}

	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	s.cache.Delete(userID)

	return toSettingsResponse(settings), nil
}

func toSettingsResponse(m *model.UserSettings) *dto.SettingsResponse {
	return &dto.SettingsResponse{
		UserId:            m.UserID,
		AIProvider:        m.AIProvider,
		AIResponseEnabled: m.AIResponseEnabled,
		GeminiModel:       m.GeminiModel,
		LilyModel:         m.LilyModel,
		LilyAPIURL:        m.LilyAPIURL,
		AISettings:        []byte(m.AISettings),
	}
}

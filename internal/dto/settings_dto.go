package dto

import "encoding/json"

type UpdateSettingsRequest struct {
	AIProvider        *string         `json:"ai_provider" validate:"omitempty,oneof=gemini lily gradio"`
	AIResponseEnabled *bool           `json:"ai_response_enabled"`
	GeminiModel       *string         `json:"gemini_model" validate:"omitempty,max=100"`
	LilyModel         *string         `json:"lily_model" validate:"omitempty,max=100"`
	LilyAPIURL        *string         `json:"lily_api_url" validate:"omitempty,url"`
	AISettings        json.RawMessage `json:"ai_settings"`
}

type SettingsResponse struct {
	UserId            uint            `json:"user_id"`
	AIProvider        string          `json:"ai_provider,omitempty"`
	AIResponseEnabled bool            `json:"ai_response_enabled"`
	GeminiModel       string          `json:"gemini_model,omitempty"`
	LilyModel         string          `json:"lily_model,omitempty"`
	LilyAPIURL        string          `json:"lily_api_url,omitempty"`
	AISettings        json.RawMessage `json:"ai_settings,omitempty"`
}

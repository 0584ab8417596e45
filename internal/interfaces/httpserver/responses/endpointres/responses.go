package endpointres

import (
	"strings"
	"time"

	"omnichat/internal/domain/chat"
	"omnichat/internal/domain/endpoint"
)

type EndpointResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	PlatformID    *string   `json:"platform_id,omitempty"`
	IsCustom      bool      `json:"is_custom"`
	CustomBaseURL *string   `json:"custom_base_url,omitempty"`
	CredentialID  string    `json:"credential_id"`
	ModelID       string    `json:"model_id"`
	ModelType     string    `json:"model_type"`
	SystemPrompt  *string   `json:"system_prompt,omitempty"`
	Temperature   float64   `json:"temperature"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewEndpointResponse(e *endpoint.Endpoint) EndpointResponse {
	return EndpointResponse{
		ID:            e.PublicID,
		Name:          e.Name,
		PlatformID:    e.PlatformPublicID,
		IsCustom:      e.IsCustom,
		CustomBaseURL: e.CustomBaseURL,
		CredentialID:  e.CredentialID,
		ModelID:       e.ModelID,
		ModelType:     string(e.ModelType),
		SystemPrompt:  e.SystemPrompt,
		Temperature:   e.Temperature,
		CreatedAt:     e.CreatedAt,
	}
}

// CredentialResponse never carries the full key, only a hint.
type CredentialResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	APIKeyHint string    `json:"api_key_hint"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewCredentialResponse(c *endpoint.Credential) CredentialResponse {
	return CredentialResponse{
		ID:         c.PublicID,
		Name:       c.Name,
		APIKeyHint: maskAPIKey(c.APIKey),
		CreatedAt:  c.CreatedAt,
	}
}

func maskAPIKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return "****" + key[len(key)-4:]
}

type PlatformResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
}

func NewPlatformResponse(p *endpoint.Platform) PlatformResponse {
	return PlatformResponse{
		ID:      p.PublicID,
		Name:    p.Name,
		BaseURL: p.BaseURL,
	}
}

type SessionResponse struct {
	ID         string    `json:"id"`
	EndpointID string    `json:"endpoint_id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewSessionResponse(s *chat.Session) SessionResponse {
	return SessionResponse{
		ID:         s.PublicID,
		EndpointID: s.EndpointID,
		Title:      s.Title,
		CreatedAt:  s.CreatedAt,
	}
}

type MessageResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ImagePath *string   `json:"image_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMessageResponse(m *chat.Message) MessageResponse {
	return MessageResponse{
		ID:        m.PublicID,
		SessionID: m.SessionID,
		Role:      string(m.Role),
		Content:   m.Content,
		ImagePath: m.ImagePath,
		CreatedAt: m.CreatedAt,
	}
}

package endpointreq

type CreateEndpointRequest struct {
	Name          string   `json:"name" binding:"required"`
	PlatformID    *string  `json:"platform_id"`
	IsCustom      bool     `json:"is_custom"`
	CustomBaseURL *string  `json:"custom_base_url"`
	CredentialID  string   `json:"credential_id" binding:"required"`
	ModelID       string   `json:"model_id" binding:"required"`
	ModelType     string   `json:"model_type"`
	SystemPrompt  *string  `json:"system_prompt"`
	Temperature   *float64 `json:"temperature"`
}

type UpdateEndpointRequest struct {
	Name          string   `json:"name"`
	PlatformID    *string  `json:"platform_id"`
	CustomBaseURL *string  `json:"custom_base_url"`
	CredentialID  string   `json:"credential_id"`
	ModelID       string   `json:"model_id"`
	ModelType     string   `json:"model_type"`
	SystemPrompt  *string  `json:"system_prompt"`
	Temperature   *float64 `json:"temperature"`
}

type CreateCredentialRequest struct {
	Name   string `json:"name" binding:"required"`
	APIKey string `json:"api_key" binding:"required"`
}

type UpdateCredentialRequest struct {
	Name   string `json:"name"`
	APIKey string `json:"api_key"`
}

type CreateSessionRequest struct {
	EndpointID string `json:"endpoint_id" binding:"required"`
	Title      string `json:"title"`
}

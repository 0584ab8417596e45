package endpoint

import (
	"context"
	"time"
)

// ModelType distinguishes text-completion endpoints from image-generation ones.
type ModelType string

const (
	ModelTypeText  ModelType = "text"
	ModelTypeImage ModelType = "image"
)

const DefaultTemperature = 0.7

// Platform is a known upstream provider with its canonical base URL.
type Platform struct {
	ID        uint
	PublicID  string
	Name      string
	BaseURL   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credential is a named API key.
type Credential struct {
	ID        uint
	PublicID  string
	Name      string
	APIKey    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Endpoint binds a model on a platform (or a custom base URL) to a credential.
type Endpoint struct {
	ID               uint
	PublicID         string
	Name             string
	PlatformPublicID *string
	IsCustom         bool
	CustomBaseURL    *string
	CredentialID     string
	ModelID          string
	ModelType        ModelType
	SystemPrompt     *string
	Temperature      float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ResolvedEndpoint is an endpoint joined with its credential and the
// authoritative base URL. Everything the relay needs in one value.
type ResolvedEndpoint struct {
	EndpointID   string
	Name         string
	ModelID      string
	ModelType    ModelType
	SystemPrompt *string
	Temperature  float64
	BaseURL      string
	APIKey       string
}

// Repository defines the interface for endpoint configuration access
type Repository interface {
	// Resolve joins an endpoint with its platform and credential in a single query
	Resolve(ctx context.Context, publicID string) (*ResolvedEndpoint, error)

	CreateEndpoint(ctx context.Context, e *Endpoint) error
	GetEndpoint(ctx context.Context, publicID string) (*Endpoint, error)
	ListEndpoints(ctx context.Context) ([]*Endpoint, error)
	UpdateEndpoint(ctx context.Context, e *Endpoint) error
	DeleteEndpoint(ctx context.Context, publicID string) error

	CreateCredential(ctx context.Context, c *Credential) error
	GetCredential(ctx context.Context, publicID string) (*Credential, error)
	ListCredentials(ctx context.Context) ([]*Credential, error)
	UpdateCredential(ctx context.Context, c *Credential) error
	DeleteCredential(ctx context.Context, publicID string) error

	CreatePlatform(ctx context.Context, p *Platform) error
	GetPlatformByName(ctx context.Context, name string) (*Platform, error)
	ListPlatforms(ctx context.Context) ([]*Platform, error)
}

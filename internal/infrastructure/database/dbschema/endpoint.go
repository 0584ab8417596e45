package dbschema

import (
	"omnichat/internal/domain/endpoint"
	"omnichat/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Endpoint{})
}

// Endpoint binds a model on a platform (or custom base URL) to a credential.
// is_custom decides which of platform/custom base URL is authoritative.
type Endpoint struct {
	BaseModel
	PublicID         string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	Name             string  `gorm:"type:varchar(255);not null"`
	PlatformPublicID *string `gorm:"type:varchar(50);index"`
	IsCustom         bool    `gorm:"not null;default:false"`
	CustomBaseURL    *string `gorm:"type:varchar(512)"`
	CredentialID     string  `gorm:"type:varchar(50);index;not null"`
	ModelID          string  `gorm:"type:varchar(255);not null"`
	ModelType        string  `gorm:"type:varchar(20);not null;default:'text'"`
	SystemPrompt     *string `gorm:"type:text"`
	Temperature      float64 `gorm:"not null;default:0.7"`
}

func NewSchemaEndpoint(e *endpoint.Endpoint) *Endpoint {
	return &Endpoint{
		BaseModel: BaseModel{
			ID:        e.ID,
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		},
		PublicID:         e.PublicID,
		Name:             e.Name,
		PlatformPublicID: e.PlatformPublicID,
		IsCustom:         e.IsCustom,
		CustomBaseURL:    e.CustomBaseURL,
		CredentialID:     e.CredentialID,
		ModelID:          e.ModelID,
		ModelType:        string(e.ModelType),
		SystemPrompt:     e.SystemPrompt,
		Temperature:      e.Temperature,
	}
}

// EtoD converts database schema to domain endpoint (Entity to Domain)
func (e *Endpoint) EtoD() *endpoint.Endpoint {
	return &endpoint.Endpoint{
		ID:               e.ID,
		PublicID:         e.PublicID,
		Name:             e.Name,
		PlatformPublicID: e.PlatformPublicID,
		IsCustom:         e.IsCustom,
		CustomBaseURL:    e.CustomBaseURL,
		CredentialID:     e.CredentialID,
		ModelID:          e.ModelID,
		ModelType:        endpoint.ModelType(e.ModelType),
		SystemPrompt:     e.SystemPrompt,
		Temperature:      e.Temperature,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

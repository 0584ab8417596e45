package dbschema

import (
	"omnichat/internal/domain/endpoint"
	"omnichat/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Platform{})
	database.RegisterSchemaForAutoMigrate(Credential{})
}

// Platform is a known upstream provider with its canonical base URL.
type Platform struct {
	BaseModel
	PublicID string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Name     string `gorm:"type:varchar(100);uniqueIndex;not null"`
	BaseURL  string `gorm:"type:varchar(512);not null"`
}

// Credential is a named API key.
type Credential struct {
	BaseModel
	PublicID string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Name     string `gorm:"type:varchar(255);not null"`
	APIKey   string `gorm:"type:text;not null"`
}

func NewSchemaPlatform(p *endpoint.Platform) *Platform {
	return &Platform{
		BaseModel: BaseModel{
			ID:        p.ID,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		},
		PublicID: p.PublicID,
		Name:     p.Name,
		BaseURL:  p.BaseURL,
	}
}

// EtoD converts database schema to domain platform (Entity to Domain)
func (p *Platform) EtoD() *endpoint.Platform {
	return &endpoint.Platform{
		ID:        p.ID,
		PublicID:  p.PublicID,
		Name:      p.Name,
		BaseURL:   p.BaseURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func NewSchemaCredential(c *endpoint.Credential) *Credential {
	return &Credential{
		BaseModel: BaseModel{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
		PublicID: c.PublicID,
		Name:     c.Name,
		APIKey:   c.APIKey,
	}
}

// EtoD converts database schema to domain credential (Entity to Domain)
func (c *Credential) EtoD() *endpoint.Credential {
	return &endpoint.Credential{
		ID:        c.ID,
		PublicID:  c.PublicID,
		Name:      c.Name,
		APIKey:    c.APIKey,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

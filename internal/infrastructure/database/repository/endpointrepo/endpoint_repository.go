package endpointrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"omnichat/internal/domain/endpoint"
	"omnichat/internal/infrastructure/database/dbschema"
	"omnichat/internal/infrastructure/database/transaction"
	"omnichat/internal/utils/platformerrors"
)

// EndpointGormRepository implements endpoint.Repository using GORM
type EndpointGormRepository struct {
	db *transaction.Database
}

var _ endpoint.Repository = (*EndpointGormRepository)(nil)

// NewEndpointGormRepository creates a new GORM-based endpoint repository
func NewEndpointGormRepository(db *transaction.Database) endpoint.Repository {
	return &EndpointGormRepository{db: db}
}

// resolvedRow is the projection of the endpoint/platform/credential join.
type resolvedRow struct {
	PublicID        string
	Name            string
	ModelID         string
	ModelType       string
	SystemPrompt    *string
	Temperature     float64
	IsCustom        bool
	CustomBaseURL   *string
	PlatformBaseURL *string
	APIKey          *string
}

// Resolve joins the endpoint with its platform and credential in one query so
// the caller never observes a partially resolved endpoint.
func (r *EndpointGormRepository) Resolve(ctx context.Context, publicID string) (*endpoint.ResolvedEndpoint, error) {
	tx := r.db.GetTx(ctx)

	var row resolvedRow
	err := tx.Model(&dbschema.Endpoint{}).
		Select(`endpoints.public_id, endpoints.name, endpoints.model_id, endpoints.model_type,
			endpoints.system_prompt, endpoints.temperature, endpoints.is_custom, endpoints.custom_base_url,
			platforms.base_url AS platform_base_url, credentials.api_key`).
		Joins("LEFT JOIN omnichat.platforms platforms ON platforms.public_id = endpoints.platform_public_id").
		Joins("LEFT JOIN omnichat.credentials credentials ON credentials.public_id = endpoints.credential_id").
		Where("endpoints.public_id = ?", publicID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "endpoint not found", err)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to resolve endpoint", err)
	}

	baseURL := ""
	if row.IsCustom {
		if row.CustomBaseURL != nil {
			baseURL = *row.CustomBaseURL
		}
	} else if row.PlatformBaseURL != nil {
		baseURL = *row.PlatformBaseURL
	}
	if baseURL == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeValidation, "endpoint has no resolvable base url", nil)
	}
	if row.APIKey == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeValidation, "endpoint credential not found", nil)
	}

	return &endpoint.ResolvedEndpoint{
		EndpointID:   row.PublicID,
		Name:         row.Name,
		ModelID:      row.ModelID,
		ModelType:    endpoint.ModelType(row.ModelType),
		SystemPrompt: row.SystemPrompt,
		Temperature:  row.Temperature,
		BaseURL:      baseURL,
		APIKey:       *row.APIKey,
	}, nil
}

func (r *EndpointGormRepository) CreateEndpoint(ctx context.Context, e *endpoint.Endpoint) error {
	schema := dbschema.NewSchemaEndpoint(e)
	tx := r.db.GetTx(ctx)
	if err := tx.Create(schema).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create endpoint", err)
	}
	e.ID = schema.ID
	e.CreatedAt = schema.CreatedAt
	e.UpdatedAt = schema.UpdatedAt
	return nil
}

func (r *EndpointGormRepository) GetEndpoint(ctx context.Context, publicID string) (*endpoint.Endpoint, error) {
	var schema dbschema.Endpoint
	tx := r.db.GetTx(ctx)
	if err := tx.Where("public_id = ?", publicID).First(&schema).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "endpoint not found", err)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to find endpoint", err)
	}
	return schema.EtoD(), nil
}

func (r *EndpointGormRepository) ListEndpoints(ctx context.Context) ([]*endpoint.Endpoint, error) {
	var schemas []dbschema.Endpoint
	tx := r.db.GetTx(ctx)
	if err := tx.Order("created_at ASC").Find(&schemas).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list endpoints", err)
	}
	endpoints := make([]*endpoint.Endpoint, 0, len(schemas))
	for i := range schemas {
		endpoints = append(endpoints, schemas[i].EtoD())
	}
	return endpoints, nil
}

func (r *EndpointGormRepository) UpdateEndpoint(ctx context.Context, e *endpoint.Endpoint) error {
	schema := dbschema.NewSchemaEndpoint(e)
	tx := r.db.GetTx(ctx)
	result := tx.Model(&dbschema.Endpoint{}).
		Where("public_id = ?", e.PublicID).
		Updates(map[string]interface{}{
			"name":               schema.Name,
			"platform_public_id": schema.PlatformPublicID,
			"is_custom":          schema.IsCustom,
			"custom_base_url":    schema.CustomBaseURL,
			"credential_id":      schema.CredentialID,
			"model_id":           schema.ModelID,
			"model_type":         schema.ModelType,
			"system_prompt":      schema.SystemPrompt,
			"temperature":        schema.Temperature,
		})
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to update endpoint", result.Error)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "endpoint not found", nil)
	}
	return nil
}

func (r *EndpointGormRepository) DeleteEndpoint(ctx context.Context, publicID string) error {
	tx := r.db.GetTx(ctx)
	result := tx.Where("public_id = ?", publicID).Delete(&dbschema.Endpoint{})
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to delete endpoint", result.Error)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "endpoint not found", nil)
	}
	return nil
}

func (r *EndpointGormRepository) CreateCredential(ctx context.Context, c *endpoint.Credential) error {
	schema := dbschema.NewSchemaCredential(c)
	tx := r.db.GetTx(ctx)
	if err := tx.Create(schema).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create credential", err)
	}
	c.ID = schema.ID
	c.CreatedAt = schema.CreatedAt
	c.UpdatedAt = schema.UpdatedAt
	return nil
}

func (r *EndpointGormRepository) GetCredential(ctx context.Context, publicID string) (*endpoint.Credential, error) {
	var schema dbschema.Credential
	tx := r.db.GetTx(ctx)
	if err := tx.Where("public_id = ?", publicID).First(&schema).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "credential not found", err)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to find credential", err)
	}
	return schema.EtoD(), nil
}

func (r *EndpointGormRepository) ListCredentials(ctx context.Context) ([]*endpoint.Credential, error) {
	var schemas []dbschema.Credential
	tx := r.db.GetTx(ctx)
	if err := tx.Order("created_at ASC").Find(&schemas).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list credentials", err)
	}
	credentials := make([]*endpoint.Credential, 0, len(schemas))
	for i := range schemas {
		credentials = append(credentials, schemas[i].EtoD())
	}
	return credentials, nil
}

func (r *EndpointGormRepository) UpdateCredential(ctx context.Context, c *endpoint.Credential) error {
	tx := r.db.GetTx(ctx)
	result := tx.Model(&dbschema.Credential{}).
		Where("public_id = ?", c.PublicID).
		Updates(map[string]interface{}{
			"name":    c.Name,
			"api_key": c.APIKey,
		})
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to update credential", result.Error)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "credential not found", nil)
	}
	return nil
}

func (r *EndpointGormRepository) DeleteCredential(ctx context.Context, publicID string) error {
	tx := r.db.GetTx(ctx)
	result := tx.Where("public_id = ?", publicID).Delete(&dbschema.Credential{})
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to delete credential", result.Error)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "credential not found", nil)
	}
	return nil
}

func (r *EndpointGormRepository) CreatePlatform(ctx context.Context, p *endpoint.Platform) error {
	schema := dbschema.NewSchemaPlatform(p)
	tx := r.db.GetTx(ctx)
	if err := tx.Create(schema).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create platform", err)
	}
	p.ID = schema.ID
	return nil
}

func (r *EndpointGormRepository) GetPlatformByName(ctx context.Context, name string) (*endpoint.Platform, error) {
	var schema dbschema.Platform
	tx := r.db.GetTx(ctx)
	if err := tx.Where("name = ?", name).First(&schema).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "platform not found", err)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to find platform", err)
	}
	return schema.EtoD(), nil
}

func (r *EndpointGormRepository) ListPlatforms(ctx context.Context) ([]*endpoint.Platform, error) {
	var schemas []dbschema.Platform
	tx := r.db.GetTx(ctx)
	if err := tx.Order("name ASC").Find(&schemas).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list platforms", err)
	}
	platforms := make([]*endpoint.Platform, 0, len(schemas))
	for i := range schemas {
		platforms = append(platforms, schemas[i].EtoD())
	}
	return platforms, nil
}

package endpoint

import (
	"context"
	"strings"

	"omnichat/internal/config"
	"omnichat/internal/utils/crypto"
	"omnichat/internal/utils/idgen"
	"omnichat/internal/utils/platformerrors"
)

// Service exposes endpoint configuration operations to the HTTP layer.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve returns the endpoint joined with its credential and base URL.
// The relay never sees a partially resolved endpoint.
func (s *Service) Resolve(ctx context.Context, publicID string) (*ResolvedEndpoint, error) {
	if strings.TrimSpace(publicID) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "endpoint id is required", nil)
	}
	resolved, err := s.repo.Resolve(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "resolve endpoint")
	}

	plain, err := s.decryptAPIKey(ctx, resolved.APIKey)
	if err != nil {
		return nil, err
	}
	resolved.APIKey = plain

	return resolved, nil
}

// Credential keys are stored AES-GCM encrypted and only decrypted at the
// point of use.
func (s *Service) encryptAPIKey(ctx context.Context, plain string) (string, error) {
	secret := strings.TrimSpace(config.GetGlobal().CredentialSecret)
	if secret == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "credential secret is not configured", nil)
	}
	cipher, err := crypto.EncryptString(secret, plain)
	if err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "encrypt api key", err)
	}
	return cipher, nil
}

func (s *Service) decryptAPIKey(ctx context.Context, cipher string) (string, error) {
	secret := strings.TrimSpace(config.GetGlobal().CredentialSecret)
	if secret == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "credential secret is not configured", nil)
	}
	plain, err := crypto.DecryptString(secret, cipher)
	if err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "decrypt api key", err)
	}
	return plain, nil
}

// CreateEndpoint validates and stores a new endpoint configuration.
func (s *Service) CreateEndpoint(ctx context.Context, e *Endpoint) (*Endpoint, error) {
	if e.ModelID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "model id is required", nil)
	}
	if e.IsCustom {
		if e.CustomBaseURL == nil || strings.TrimSpace(*e.CustomBaseURL) == "" {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeValidation, "custom endpoint requires a base url", nil)
		}
	} else if e.PlatformPublicID == nil || *e.PlatformPublicID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "endpoint requires a platform", nil)
	}
	if e.ModelType == "" {
		e.ModelType = ModelTypeText
	}
	if e.Temperature == 0 {
		e.Temperature = DefaultTemperature
	}

	publicID, err := idgen.GenerateSecureID("ep", 16)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "generate endpoint id", err)
	}
	e.PublicID = publicID

	if err := s.repo.CreateEndpoint(ctx, e); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create endpoint")
	}
	return e, nil
}

func (s *Service) GetEndpoint(ctx context.Context, publicID string) (*Endpoint, error) {
	e, err := s.repo.GetEndpoint(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get endpoint")
	}
	return e, nil
}

func (s *Service) ListEndpoints(ctx context.Context) ([]*Endpoint, error) {
	endpoints, err := s.repo.ListEndpoints(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list endpoints")
	}
	return endpoints, nil
}

// UpdateEndpoint applies the non-zero fields of patch onto the stored endpoint.
func (s *Service) UpdateEndpoint(ctx context.Context, publicID string, patch *Endpoint) (*Endpoint, error) {
	existing, err := s.repo.GetEndpoint(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get endpoint")
	}

	if patch.Name != "" {
		existing.Name = patch.Name
	}
	if patch.PlatformPublicID != nil {
		existing.PlatformPublicID = patch.PlatformPublicID
	}
	if patch.CustomBaseURL != nil {
		existing.CustomBaseURL = patch.CustomBaseURL
		existing.IsCustom = true
	}
	if patch.CredentialID != "" {
		existing.CredentialID = patch.CredentialID
	}
	if patch.ModelID != "" {
		existing.ModelID = patch.ModelID
	}
	if patch.ModelType != "" {
		existing.ModelType = patch.ModelType
	}
	if patch.SystemPrompt != nil {
		existing.SystemPrompt = patch.SystemPrompt
	}
	if patch.Temperature != 0 {
		existing.Temperature = patch.Temperature
	}

	if err := s.repo.UpdateEndpoint(ctx, existing); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update endpoint")
	}
	return existing, nil
}

func (s *Service) DeleteEndpoint(ctx context.Context, publicID string) error {
	if err := s.repo.DeleteEndpoint(ctx, publicID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete endpoint")
	}
	return nil
}

// CreateCredential stores a new named API key.
func (s *Service) CreateCredential(ctx context.Context, c *Credential) (*Credential, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "api key is required", nil)
	}
	publicID, err := idgen.GenerateSecureID("cred", 16)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "generate credential id", err)
	}
	c.PublicID = publicID

	plain := c.APIKey
	cipher, err := s.encryptAPIKey(ctx, plain)
	if err != nil {
		return nil, err
	}
	c.APIKey = cipher

	if err := s.repo.CreateCredential(ctx, c); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create credential")
	}
	c.APIKey = plain
	return c, nil
}

func (s *Service) GetCredential(ctx context.Context, publicID string) (*Credential, error) {
	c, err := s.repo.GetCredential(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get credential")
	}
	plain, err := s.decryptAPIKey(ctx, c.APIKey)
	if err != nil {
		return nil, err
	}
	c.APIKey = plain
	return c, nil
}

func (s *Service) ListCredentials(ctx context.Context) ([]*Credential, error) {
	creds, err := s.repo.ListCredentials(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list credentials")
	}
	for _, c := range creds {
		plain, err := s.decryptAPIKey(ctx, c.APIKey)
		if err != nil {
			return nil, err
		}
		c.APIKey = plain
	}
	return creds, nil
}

func (s *Service) UpdateCredential(ctx context.Context, publicID string, patch *Credential) (*Credential, error) {
	existing, err := s.repo.GetCredential(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get credential")
	}
	if patch.Name != "" {
		existing.Name = patch.Name
	}
	if patch.APIKey != "" {
		cipher, err := s.encryptAPIKey(ctx, patch.APIKey)
		if err != nil {
			return nil, err
		}
		existing.APIKey = cipher
	}
	if err := s.repo.UpdateCredential(ctx, existing); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update credential")
	}

	plain, err := s.decryptAPIKey(ctx, existing.APIKey)
	if err != nil {
		return nil, err
	}
	existing.APIKey = plain
	return existing, nil
}

func (s *Service) DeleteCredential(ctx context.Context, publicID string) error {
	if err := s.repo.DeleteCredential(ctx, publicID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete credential")
	}
	return nil
}

func (s *Service) ListPlatforms(ctx context.Context) ([]*Platform, error) {
	platforms, err := s.repo.ListPlatforms(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list platforms")
	}
	return platforms, nil
}

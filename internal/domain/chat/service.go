package chat

import (
	"context"
	"strings"

	"omnichat/internal/utils/idgen"
	"omnichat/internal/utils/platformerrors"
)

// Service exposes session and message operations to the HTTP layer.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateSession(ctx context.Context, endpointID, title string) (*Session, error) {
	if strings.TrimSpace(endpointID) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "endpoint id is required", nil)
	}
	publicID, err := idgen.GenerateSecureID("sess", 16)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "generate session id", err)
	}
	if title == "" {
		title = DefaultSessionTitle
	}

	session := &Session{
		PublicID:   publicID,
		EndpointID: endpointID,
		Title:      title,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create session")
	}
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, publicID string) (*Session, error) {
	session, err := s.repo.GetSession(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get session")
	}
	return session, nil
}

func (s *Service) ListSessions(ctx context.Context) ([]*Session, error) {
	sessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list sessions")
	}
	return sessions, nil
}

func (s *Service) DeleteSession(ctx context.Context, publicID string) error {
	if err := s.repo.DeleteSession(ctx, publicID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete session")
	}
	return nil
}

func (s *Service) ListMessages(ctx context.Context, sessionPublicID string) ([]*Message, error) {
	if _, err := s.repo.GetSession(ctx, sessionPublicID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get session")
	}
	messages, err := s.repo.ListMessages(ctx, sessionPublicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list messages")
	}
	return messages, nil
}

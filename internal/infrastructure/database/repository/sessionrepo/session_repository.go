package sessionrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"omnichat/internal/domain/chat"
	"omnichat/internal/infrastructure/database/dbschema"
	"omnichat/internal/infrastructure/database/transaction"
	"omnichat/internal/utils/platformerrors"
)

// SessionGormRepository implements chat.Repository using GORM
type SessionGormRepository struct {
	db *transaction.Database
}

var _ chat.Repository = (*SessionGormRepository)(nil)

// NewSessionGormRepository creates a new GORM-based session repository
func NewSessionGormRepository(db *transaction.Database) chat.Repository {
	return &SessionGormRepository{db: db}
}

func (r *SessionGormRepository) CreateSession(ctx context.Context, s *chat.Session) error {
	schema := dbschema.NewSchemaChatSession(s)
	tx := r.db.GetTx(ctx)
	if err := tx.Create(schema).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create session", err)
	}
	s.ID = schema.ID
	s.CreatedAt = schema.CreatedAt
	s.UpdatedAt = schema.UpdatedAt
	return nil
}

func (r *SessionGormRepository) GetSession(ctx context.Context, publicID string) (*chat.Session, error) {
	var schema dbschema.ChatSession
	tx := r.db.GetTx(ctx)
	if err := tx.Where("public_id = ?", publicID).First(&schema).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "session not found", err)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to find session", err)
	}
	return schema.EtoD(), nil
}

func (r *SessionGormRepository) ListSessions(ctx context.Context) ([]*chat.Session, error) {
	var schemas []dbschema.ChatSession
	tx := r.db.GetTx(ctx)
	if err := tx.Order("created_at DESC").Find(&schemas).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list sessions", err)
	}
	sessions := make([]*chat.Session, 0, len(schemas))
	for i := range schemas {
		sessions = append(sessions, schemas[i].EtoD())
	}
	return sessions, nil
}

func (r *SessionGormRepository) UpdateSessionTitle(ctx context.Context, publicID, title string) error {
	tx := r.db.GetTx(ctx)
	result := tx.Model(&dbschema.ChatSession{}).Where("public_id = ?", publicID).Update("title", title)
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to update session title", result.Error)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "session not found", nil)
	}
	return nil
}

// DeleteSession removes the session and its messages. Blob files referenced
// by deleted messages are left behind, there is no garbage collection.
func (r *SessionGormRepository) DeleteSession(ctx context.Context, publicID string) error {
	tx := r.db.GetTx(ctx)
	result := tx.Where("public_id = ?", publicID).Delete(&dbschema.ChatSession{})
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to delete session", result.Error)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "session not found", nil)
	}
	if err := tx.Where("session_id = ?", publicID).Delete(&dbschema.ChatMessage{}).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to delete session messages", err)
	}
	return nil
}

func (r *SessionGormRepository) CreateMessage(ctx context.Context, m *chat.Message) error {
	schema := dbschema.NewSchemaChatMessage(m)
	tx := r.db.GetTx(ctx)
	if err := tx.Create(schema).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create message", err)
	}
	m.ID = schema.ID
	m.CreatedAt = schema.CreatedAt
	return nil
}

// ListMessages returns the session history in chronological order, insertion
// id breaking created_at ties.
func (r *SessionGormRepository) ListMessages(ctx context.Context, sessionPublicID string) ([]*chat.Message, error) {
	var schemas []dbschema.ChatMessage
	tx := r.db.GetTx(ctx)
	err := tx.Where("session_id = ?", sessionPublicID).
		Order("created_at ASC, id ASC").
		Find(&schemas).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list messages", err)
	}
	messages := make([]*chat.Message, 0, len(schemas))
	for i := range schemas {
		messages = append(messages, schemas[i].EtoD())
	}
	return messages, nil
}

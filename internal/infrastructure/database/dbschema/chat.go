package dbschema

import (
	"time"

	"omnichat/internal/domain/chat"
	"omnichat/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(ChatSession{})
	database.RegisterSchemaForAutoMigrate(ChatMessage{})
}

// ChatSession groups the messages of one conversation against an endpoint.
type ChatSession struct {
	BaseModel
	PublicID   string `gorm:"type:varchar(50);uniqueIndex;not null"`
	EndpointID string `gorm:"type:varchar(50);index;not null"`
	Title      string `gorm:"type:varchar(255);not null"`
}

// ChatMessage is one immutable conversation turn. The composite index serves
// the history query: created_at ascending within a session, id breaking ties.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey"`
	PublicID  string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	SessionID string    `gorm:"type:varchar(50);index:idx_message_session_created;not null"`
	Role      string    `gorm:"type:varchar(20);not null"`
	Content   string    `gorm:"type:text;not null"`
	ImagePath *string   `gorm:"type:varchar(512)"`
	CreatedAt time.Time `gorm:"index:idx_message_session_created;not null"`
}

func NewSchemaChatSession(s *chat.Session) *ChatSession {
	return &ChatSession{
		BaseModel: BaseModel{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		},
		PublicID:   s.PublicID,
		EndpointID: s.EndpointID,
		Title:      s.Title,
	}
}

// EtoD converts database schema to domain session (Entity to Domain)
func (s *ChatSession) EtoD() *chat.Session {
	return &chat.Session{
		ID:         s.ID,
		PublicID:   s.PublicID,
		EndpointID: s.EndpointID,
		Title:      s.Title,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func NewSchemaChatMessage(m *chat.Message) *ChatMessage {
	return &ChatMessage{
		ID:        m.ID,
		PublicID:  m.PublicID,
		SessionID: m.SessionID,
		Role:      string(m.Role),
		Content:   m.Content,
		ImagePath: m.ImagePath,
		CreatedAt: m.CreatedAt,
	}
}

// EtoD converts database schema to domain message (Entity to Domain)
func (m *ChatMessage) EtoD() *chat.Message {
	return &chat.Message{
		ID:        m.ID,
		PublicID:  m.PublicID,
		SessionID: m.SessionID,
		Role:      chat.Role(m.Role),
		Content:   m.Content,
		ImagePath: m.ImagePath,
		CreatedAt: m.CreatedAt,
	}
}

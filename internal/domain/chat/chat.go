package chat

import (
	"context"
	"time"
)

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// DefaultSessionTitle is the placeholder until the first user turn names
// the session.
const DefaultSessionTitle = "New chat"

// Session groups a sequence of messages against one endpoint.
type Session struct {
	ID         uint
	PublicID   string
	EndpointID string
	Title      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Message is one immutable conversation turn. ImagePath, when set, references
// a blob under the uploads directory.
type Message struct {
	ID        uint
	PublicID  string
	SessionID string
	Role      Role
	Content   string
	ImagePath *string
	CreatedAt time.Time
}

// Repository defines the interface for conversation persistence
type Repository interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, publicID string) (*Session, error)
	ListSessions(ctx context.Context) ([]*Session, error)
	UpdateSessionTitle(ctx context.Context, publicID, title string) error
	DeleteSession(ctx context.Context, publicID string) error

	// CreateMessage appends one turn; history order is created_at ascending
	// with insertion id breaking ties.
	CreateMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, sessionPublicID string) ([]*Message, error)
}

// BlobStore reads stored image blobs for history assembly.
type BlobStore interface {
	Read(name string) ([]byte, error)
}

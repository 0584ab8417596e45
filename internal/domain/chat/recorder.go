package chat

import (
	"context"

	"omnichat/internal/infrastructure/logger"
	"omnichat/internal/infrastructure/metrics"
	"omnichat/internal/utils/idgen"
	"omnichat/internal/utils/stringutils"
)

// Recorder persists conversation turns on a best-effort basis. Writes are
// gated by the caller's save flag and a bound session; failures are logged
// and never propagated, so persistence can never break a relay that already
// succeeded.
type Recorder struct {
	repo Repository
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// RecordTurn inserts one turn. Returns the stored message so callers can
// exclude it from history assembly; nil when the write was gated off or
// failed.
func (r *Recorder) RecordTurn(ctx context.Context, save bool, sessionID string, role Role, content string, imagePath *string) *Message {
	if !save || sessionID == "" {
		return nil
	}

	log := logger.GetLogger()
	publicID, err := idgen.GenerateSecureID("msg", 16)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate message id, turn not persisted")
		return nil
	}

	msg := &Message{
		PublicID:  publicID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		ImagePath: imagePath,
	}
	if err := r.repo.CreateMessage(ctx, msg); err != nil {
		log.Error().
			Str("session_id", sessionID).
			Str("role", string(role)).
			Err(err).
			Msg("failed to persist chat turn")
		return nil
	}
	metrics.MessagesPersistedTotal.WithLabelValues(string(role)).Inc()

	if role == RoleUser {
		r.maybeTitleSession(ctx, sessionID, content)
	}

	return msg
}

// maybeTitleSession derives the session title from the first user turn.
// Best effort, like every other write on this path.
func (r *Recorder) maybeTitleSession(ctx context.Context, sessionID, content string) {
	log := logger.GetLogger()

	session, err := r.repo.GetSession(ctx, sessionID)
	if err != nil || session.Title != DefaultSessionTitle {
		return
	}

	title := stringutils.GenerateTitle(content, 80)
	if title == "" {
		return
	}
	if err := r.repo.UpdateSessionTitle(ctx, sessionID, title); err != nil {
		log.Debug().Str("session_id", sessionID).Err(err).Msg("failed to title session")
	}
}

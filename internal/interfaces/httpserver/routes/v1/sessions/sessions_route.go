package sessions

import (
	"github.com/gin-gonic/gin"

	"omnichat/internal/interfaces/httpserver/handlers/sessionhandler"
)

// SessionsRoute wires chat session management and history listing.
type SessionsRoute struct {
	sessionHandler *sessionhandler.SessionHandler
}

func NewSessionsRoute(sessionHandler *sessionhandler.SessionHandler) *SessionsRoute {
	return &SessionsRoute{sessionHandler: sessionHandler}
}

func (r *SessionsRoute) RegisterRouter(router gin.IRouter) {
	sessions := router.Group("/sessions")
	sessions.POST("", r.sessionHandler.CreateSession)
	sessions.GET("", r.sessionHandler.ListSessions)
	sessions.GET("/:id", r.sessionHandler.GetSession)
	sessions.DELETE("/:id", r.sessionHandler.DeleteSession)
	sessions.GET("/:id/messages", r.sessionHandler.ListMessages)
}

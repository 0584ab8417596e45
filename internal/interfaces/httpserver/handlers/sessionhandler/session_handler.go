package sessionhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"omnichat/internal/domain/chat"
	"omnichat/internal/interfaces/httpserver/requests/endpointreq"
	"omnichat/internal/interfaces/httpserver/responses"
	"omnichat/internal/interfaces/httpserver/responses/endpointres"
	"omnichat/internal/utils/functional"
)

// SessionHandler exposes chat session and message listing operations.
type SessionHandler struct {
	service *chat.Service
}

func NewSessionHandler(service *chat.Service) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) CreateSession(reqCtx *gin.Context) {
	var request endpointreq.CreateSessionRequest
	if err := reqCtx.ShouldBindJSON(&request); err != nil {
		responses.HandleError(reqCtx, err, "Invalid request body")
		return
	}

	session, err := h.service.CreateSession(reqCtx.Request.Context(), request.EndpointID, request.Title)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to create session")
		return
	}
	reqCtx.JSON(http.StatusCreated, endpointres.NewSessionResponse(session))
}

func (h *SessionHandler) GetSession(reqCtx *gin.Context) {
	session, err := h.service.GetSession(reqCtx.Request.Context(), reqCtx.Param("id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to get session")
		return
	}
	reqCtx.JSON(http.StatusOK, endpointres.NewSessionResponse(session))
}

func (h *SessionHandler) ListSessions(reqCtx *gin.Context) {
	sessions, err := h.service.ListSessions(reqCtx.Request.Context())
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to list sessions")
		return
	}
	out := functional.Map(sessions, endpointres.NewSessionResponse)
	reqCtx.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (h *SessionHandler) DeleteSession(reqCtx *gin.Context) {
	if err := h.service.DeleteSession(reqCtx.Request.Context(), reqCtx.Param("id")); err != nil {
		responses.HandleError(reqCtx, err, "Failed to delete session")
		return
	}
	reqCtx.Status(http.StatusNoContent)
}

// ListMessages returns the session history in chronological order.
func (h *SessionHandler) ListMessages(reqCtx *gin.Context) {
	messages, err := h.service.ListMessages(reqCtx.Request.Context(), reqCtx.Param("id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to list messages")
		return
	}
	out := functional.Map(messages, endpointres.NewMessageResponse)
	reqCtx.JSON(http.StatusOK, gin.H{"messages": out})
}

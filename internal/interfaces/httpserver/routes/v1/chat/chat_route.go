package chat

import (
	"github.com/gin-gonic/gin"

	"omnichat/internal/interfaces/httpserver/handlers/chathandler"
)

// ChatRoute wires the single chat entry point.
type ChatRoute struct {
	chatHandler *chathandler.ChatHandler
}

func NewChatRoute(chatHandler *chathandler.ChatHandler) *ChatRoute {
	return &ChatRoute{chatHandler: chatHandler}
}

func (r *ChatRoute) RegisterRouter(router gin.IRouter) {
	router.POST("/chat", r.chatHandler.PostChat)
}

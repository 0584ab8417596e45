package v1

import (
	"github.com/gin-gonic/gin"

	"omnichat/internal/interfaces/httpserver/handlers/uploadhandler"
	"omnichat/internal/interfaces/httpserver/routes/v1/chat"
	"omnichat/internal/interfaces/httpserver/routes/v1/endpoints"
	"omnichat/internal/interfaces/httpserver/routes/v1/sessions"
)

type V1Route struct {
	chat          *chat.ChatRoute
	endpoints     *endpoints.EndpointsRoute
	sessions      *sessions.SessionsRoute
	uploadHandler *uploadhandler.UploadHandler
}

func NewV1Route(
	chatRoute *chat.ChatRoute,
	endpointsRoute *endpoints.EndpointsRoute,
	sessionsRoute *sessions.SessionsRoute,
	uploadHandler *uploadhandler.UploadHandler,
) *V1Route {
	return &V1Route{
		chatRoute,
		endpointsRoute,
		sessionsRoute,
		uploadHandler,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")

	v1Route.chat.RegisterRouter(v1Router)
	v1Route.endpoints.RegisterRouter(v1Router)
	v1Route.sessions.RegisterRouter(v1Router)

	v1Router.POST("/uploads", v1Route.uploadHandler.Upload)
}

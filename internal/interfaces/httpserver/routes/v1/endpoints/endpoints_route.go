package endpoints

import (
	"github.com/gin-gonic/gin"

	"omnichat/internal/interfaces/httpserver/handlers/endpointhandler"
)

// EndpointsRoute wires endpoint, credential and platform configuration.
type EndpointsRoute struct {
	endpointHandler *endpointhandler.EndpointHandler
}

func NewEndpointsRoute(endpointHandler *endpointhandler.EndpointHandler) *EndpointsRoute {
	return &EndpointsRoute{endpointHandler: endpointHandler}
}

func (r *EndpointsRoute) RegisterRouter(router gin.IRouter) {
	endpoints := router.Group("/endpoints")
	endpoints.POST("", r.endpointHandler.CreateEndpoint)
	endpoints.GET("", r.endpointHandler.ListEndpoints)
	endpoints.GET("/:id", r.endpointHandler.GetEndpoint)
	endpoints.PATCH("/:id", r.endpointHandler.UpdateEndpoint)
	endpoints.DELETE("/:id", r.endpointHandler.DeleteEndpoint)

	credentials := router.Group("/credentials")
	credentials.POST("", r.endpointHandler.CreateCredential)
	credentials.GET("", r.endpointHandler.ListCredentials)
	credentials.GET("/:id", r.endpointHandler.GetCredential)
	credentials.PATCH("/:id", r.endpointHandler.UpdateCredential)
	credentials.DELETE("/:id", r.endpointHandler.DeleteCredential)

	router.GET("/platforms", r.endpointHandler.ListPlatforms)
}

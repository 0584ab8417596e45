package endpointhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"omnichat/internal/domain/endpoint"
	"omnichat/internal/interfaces/httpserver/requests/endpointreq"
	"omnichat/internal/interfaces/httpserver/responses"
	"omnichat/internal/interfaces/httpserver/responses/endpointres"
	"omnichat/internal/utils/functional"
)

// EndpointHandler exposes the endpoint, credential and platform configuration
// surface.
type EndpointHandler struct {
	service *endpoint.Service
}

func NewEndpointHandler(service *endpoint.Service) *EndpointHandler {
	return &EndpointHandler{service: service}
}

func (h *EndpointHandler) CreateEndpoint(reqCtx *gin.Context) {
	var request endpointreq.CreateEndpointRequest
	if err := reqCtx.ShouldBindJSON(&request); err != nil {
		responses.HandleError(reqCtx, err, "Invalid request body")
		return
	}

	e := &endpoint.Endpoint{
		Name:             request.Name,
		PlatformPublicID: request.PlatformID,
		IsCustom:         request.IsCustom,
		CustomBaseURL:    request.CustomBaseURL,
		CredentialID:     request.CredentialID,
		ModelID:          request.ModelID,
		ModelType:        endpoint.ModelType(request.ModelType),
		SystemPrompt:     request.SystemPrompt,
	}
	if request.Temperature != nil {
		e.Temperature = *request.Temperature
	}

	created, err := h.service.CreateEndpoint(reqCtx.Request.Context(), e)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to create endpoint")
		return
	}
	reqCtx.JSON(http.StatusCreated, endpointres.NewEndpointResponse(created))
}

func (h *EndpointHandler) GetEndpoint(reqCtx *gin.Context) {
	e, err := h.service.GetEndpoint(reqCtx.Request.Context(), reqCtx.Param("id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to get endpoint")
		return
	}
	reqCtx.JSON(http.StatusOK, endpointres.NewEndpointResponse(e))
}

func (h *EndpointHandler) ListEndpoints(reqCtx *gin.Context) {
	endpoints, err := h.service.ListEndpoints(reqCtx.Request.Context())
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to list endpoints")
		return
	}
	out := functional.Map(endpoints, endpointres.NewEndpointResponse)
	reqCtx.JSON(http.StatusOK, gin.H{"endpoints": out})
}

func (h *EndpointHandler) UpdateEndpoint(reqCtx *gin.Context) {
	var request endpointreq.UpdateEndpointRequest
	if err := reqCtx.ShouldBindJSON(&request); err != nil {
		responses.HandleError(reqCtx, err, "Invalid request body")
		return
	}

	patch := &endpoint.Endpoint{
		Name:             request.Name,
		PlatformPublicID: request.PlatformID,
		CustomBaseURL:    request.CustomBaseURL,
		CredentialID:     request.CredentialID,
		ModelID:          request.ModelID,
		ModelType:        endpoint.ModelType(request.ModelType),
		SystemPrompt:     request.SystemPrompt,
	}
	if request.Temperature != nil {
		patch.Temperature = *request.Temperature
	}

	updated, err := h.service.UpdateEndpoint(reqCtx.Request.Context(), reqCtx.Param("id"), patch)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to update endpoint")
		return
	}
	reqCtx.JSON(http.StatusOK, endpointres.NewEndpointResponse(updated))
}

func (h *EndpointHandler) DeleteEndpoint(reqCtx *gin.Context) {
	if err := h.service.DeleteEndpoint(reqCtx.Request.Context(), reqCtx.Param("id")); err != nil {
		responses.HandleError(reqCtx, err, "Failed to delete endpoint")
		return
	}
	reqCtx.Status(http.StatusNoContent)
}

func (h *EndpointHandler) CreateCredential(reqCtx *gin.Context) {
	var request endpointreq.CreateCredentialRequest
	if err := reqCtx.ShouldBindJSON(&request); err != nil {
		responses.HandleError(reqCtx, err, "Invalid request body")
		return
	}

	created, err := h.service.CreateCredential(reqCtx.Request.Context(), &endpoint.Credential{
		Name:   request.Name,
		APIKey: request.APIKey,
	})
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to create credential")
		return
	}
	reqCtx.JSON(http.StatusCreated, endpointres.NewCredentialResponse(created))
}

func (h *EndpointHandler) GetCredential(reqCtx *gin.Context) {
	c, err := h.service.GetCredential(reqCtx.Request.Context(), reqCtx.Param("id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to get credential")
		return
	}
	reqCtx.JSON(http.StatusOK, endpointres.NewCredentialResponse(c))
}

func (h *EndpointHandler) ListCredentials(reqCtx *gin.Context) {
	credentials, err := h.service.ListCredentials(reqCtx.Request.Context())
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to list credentials")
		return
	}
	out := functional.Map(credentials, endpointres.NewCredentialResponse)
	reqCtx.JSON(http.StatusOK, gin.H{"credentials": out})
}

func (h *EndpointHandler) UpdateCredential(reqCtx *gin.Context) {
	var request endpointreq.UpdateCredentialRequest
	if err := reqCtx.ShouldBindJSON(&request); err != nil {
		responses.HandleError(reqCtx, err, "Invalid request body")
		return
	}

	updated, err := h.service.UpdateCredential(reqCtx.Request.Context(), reqCtx.Param("id"), &endpoint.Credential{
		Name:   request.Name,
		APIKey: request.APIKey,
	})
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to update credential")
		return
	}
	reqCtx.JSON(http.StatusOK, endpointres.NewCredentialResponse(updated))
}

func (h *EndpointHandler) DeleteCredential(reqCtx *gin.Context) {
	if err := h.service.DeleteCredential(reqCtx.Request.Context(), reqCtx.Param("id")); err != nil {
		responses.HandleError(reqCtx, err, "Failed to delete credential")
		return
	}
	reqCtx.Status(http.StatusNoContent)
}

func (h *EndpointHandler) ListPlatforms(reqCtx *gin.Context) {
	platforms, err := h.service.ListPlatforms(reqCtx.Request.Context())
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to list platforms")
		return
	}
	out := functional.Map(platforms, endpointres.NewPlatformResponse)
	reqCtx.JSON(http.StatusOK, gin.H{"platforms": out})
}

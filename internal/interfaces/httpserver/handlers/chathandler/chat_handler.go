package chathandler

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/gin-gonic/gin"

	"omnichat/internal/domain/chat"
	"omnichat/internal/domain/endpoint"
	"omnichat/internal/domain/provider"
	"omnichat/internal/infrastructure/logger"
	"omnichat/internal/interfaces/httpserver/requests/chatreq"
	"omnichat/internal/interfaces/httpserver/responses"
	"omnichat/internal/relay"
)

// ChatHandler is the single client-facing chat entry point. It resolves the
// endpoint, persists the user turn, assembles history and hands off to the
// text or image relay.
type ChatHandler struct {
	endpoints *endpoint.Service
	assembler *chat.HistoryAssembler
	recorder  *chat.Recorder
	relay     *relay.Relay
}

func NewChatHandler(
	endpoints *endpoint.Service,
	assembler *chat.HistoryAssembler,
	recorder *chat.Recorder,
	relayService *relay.Relay,
) *ChatHandler {
	return &ChatHandler{
		endpoints: endpoints,
		assembler: assembler,
		recorder:  recorder,
		relay:     relayService,
	}
}

// PostChat handles POST /v1/chat for both text and image endpoints.
func (h *ChatHandler) PostChat(reqCtx *gin.Context) {
	var request chatreq.ChatRequest
	if err := reqCtx.ShouldBindJSON(&request); err != nil {
		responses.HandleError(reqCtx, err, "Invalid request body")
		return
	}

	ctx := reqCtx.Request.Context()
	resolved, err := h.endpoints.Resolve(ctx, request.EndpointID)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to resolve endpoint")
		return
	}

	save := request.SaveToDBOrDefault()
	sessionID := request.SessionIDOrEmpty()

	log := logger.GetLogger()
	log.Info().
		Str("endpoint_id", request.EndpointID).
		Str("session_id", sessionID).
		Str("model", resolved.ModelID).
		Bool("save_to_db", save).
		Msg("chat request received")

	// The user turn goes in before the relay so a crash mid-stream still
	// leaves the question on record; the pending id is excluded from history.
	userTurn := h.recorder.RecordTurn(ctx, save, sessionID, chat.RoleUser, request.Message, request.ImagePath)
	pendingID := ""
	if userTurn != nil {
		pendingID = userTurn.PublicID
	}

	isImage := resolved.ModelType == endpoint.ModelTypeImage ||
		provider.ClassifyModel(resolved.ModelID) == endpoint.ModelTypeImage
	if isImage {
		h.relay.GenerateImage(reqCtx, resolved, request.Message, save, sessionID)
		return
	}

	var messages []openai.ChatCompletionMessage
	if request.UseHistoryOrDefault() {
		messages, err = h.assembler.Assemble(ctx, sessionID, pendingID, resolved.SystemPrompt)
		if err != nil {
			responses.HandleError(reqCtx, err, "Failed to assemble history")
			return
		}
	} else if resolved.SystemPrompt != nil && *resolved.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: *resolved.SystemPrompt,
		})
	}
	messages = append(messages, h.assembler.BuildUserTurn(request.Message, request.ImagePath))

	if err := h.relay.StreamChat(reqCtx, resolved, messages, save, sessionID); err != nil {
		responses.HandleError(reqCtx, err, "Upstream request failed")
	}
}

package chat

import (
	"context"
	"encoding/base64"
	"path"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"omnichat/internal/infrastructure/logger"
	"omnichat/internal/utils/platformerrors"
)

// HistoryAssembler builds the upstream message list for a chat completion
// from stored conversation turns.
type HistoryAssembler struct {
	repo  Repository
	blobs BlobStore
}

func NewHistoryAssembler(repo Repository, blobs BlobStore) *HistoryAssembler {
	return &HistoryAssembler{repo: repo, blobs: blobs}
}

// Assemble returns the prior turns of a session as upstream messages: the
// system prompt first (when set), then stored turns in ascending time order.
// The pending user message is excluded by id because the caller appends the
// current turn itself.
func (a *HistoryAssembler) Assemble(ctx context.Context, sessionID, excludeMessageID string, systemPrompt *string) ([]openai.ChatCompletionMessage, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 16)
	if systemPrompt != nil && *systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: *systemPrompt,
		})
	}

	if sessionID == "" {
		return messages, nil
	}

	stored, err := a.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "load session history")
	}

	for _, m := range stored {
		if excludeMessageID != "" && m.PublicID == excludeMessageID {
			continue
		}
		messages = append(messages, a.toUpstream(m))
	}
	return messages, nil
}

// BuildUserTurn shapes the current user message, attaching the image blob as
// multimodal content when one is referenced and still readable.
func (a *HistoryAssembler) BuildUserTurn(content string, imagePath *string) openai.ChatCompletionMessage {
	return a.build(RoleUser, content, imagePath)
}

func (a *HistoryAssembler) toUpstream(m *Message) openai.ChatCompletionMessage {
	return a.build(m.Role, m.Content, m.ImagePath)
}

func (a *HistoryAssembler) build(role Role, content string, imagePath *string) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{
		Role:    string(role),
		Content: content,
	}
	if role != RoleUser || imagePath == nil || *imagePath == "" {
		return msg
	}

	data, err := a.blobs.Read(path.Base(*imagePath))
	if err != nil {
		// A missing blob degrades to a text-only turn, no marker.
		log := logger.GetLogger()
		log.Debug().Str("image_path", *imagePath).Err(err).Msg("image blob unreadable, sending text only")
		return msg
	}

	msg.Content = ""
	msg.MultiContent = []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: content,
		},
		{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: dataURI(*imagePath, data),
			},
		},
	}
	return msg
}

func dataURI(imagePath string, data []byte) string {
	mime := "image/jpeg"
	if strings.HasSuffix(strings.ToLower(imagePath), ".png") {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

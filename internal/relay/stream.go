package relay

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"omnichat/internal/domain/chat"
	"omnichat/internal/domain/endpoint"
	"omnichat/internal/domain/provider"
	"omnichat/internal/infrastructure/logger"
	"omnichat/internal/infrastructure/metrics"
	"omnichat/internal/utils/platformerrors"
)

const maxErrorBodySize = 64 * 1024

type streamState int

const (
	stateOpen streamState = iota
	stateStreaming
	stateDone
	stateError
)

// deltaFrame is the subset of an upstream chunk the relay inspects. The frame
// itself is forwarded verbatim; this struct only steers the state machine.
type deltaFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// StreamChat relays an upstream chat completion to the caller as SSE frames.
// A non-nil return means nothing was committed to the response yet and the
// handler should write a conventional HTTP error; once headers are sent all
// failures are expressed inside the open body and the return is nil.
func (r *Relay) StreamChat(c *gin.Context, resolved *endpoint.ResolvedEndpoint, messages []openai.ChatCompletionMessage, save bool, sessionID string) error {
	ctx, cancel := context.WithTimeout(c.Request.Context(), r.streamTimeout)
	defer cancel()

	request := openai.ChatCompletionRequest{
		Model:       resolved.ModelID,
		Messages:    messages,
		Temperature: float32(resolved.Temperature),
		Stream:      true,
	}
	url := provider.ResolveURL(resolved.BaseURL, false)

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/event-stream").
		SetHeader("Accept-Encoding", "identity").
		SetAuthToken(resolved.APIKey).
		SetBody(request).
		SetDoNotParseResponse(true).
		Post(url)
	if err != nil {
		metrics.RecordUpstreamError("transport")
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeExternal, provider.TransportErrorMessage(err), err)
	}
	if resp.IsError() {
		metrics.RecordUpstreamError("status")
		message := provider.UpstreamStatusMessage(resp.StatusCode(), readUpstreamDetail(resp))
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeExternal, message, nil)
	}
	body := resp.RawResponse.Body
	defer func() {
		if closeErr := body.Close(); closeErr != nil {
			log := logger.GetLogger()
			log.Error().Err(closeErr).Msg("unable to close upstream stream body")
		}
	}()

	// Headers commit here; from now on errors go into the open body.
	setupSSEHeaders(c)

	log := logger.GetLogger()
	state := stateStreaming
	doneEmitted := false
	var accumulated strings.Builder

	scanner := NewSSEScanner(body)
	for state == stateStreaming {
		payload, err := scanner.Next()
		if err == io.EOF {
			state = stateDone
			break
		}
		if err != nil {
			log.Error().Err(err).Msg("upstream stream broke mid-relay")
			writeLine(c, "ERROR:"+provider.TransportErrorMessage(err))
			state = stateError
			break
		}

		var frame deltaFrame
		if jsonErr := json.Unmarshal([]byte(payload), &frame); jsonErr != nil {
			// Imperfect upstream buffering can split JSON across events.
			log.Warn().Str("payload", payload).Err(jsonErr).Msg("dropping unparseable stream fragment")
			continue
		}
		if len(frame.Choices) == 0 {
			continue
		}

		if frame.Choices[0].Delta.Content != "" {
			writeLine(c, dataPrefix+payload+"\n")
			accumulated.WriteString(frame.Choices[0].Delta.Content)
			continue
		}
		if frame.Choices[0].FinishReason != "" {
			// Some providers end this way and never send [DONE].
			state = stateDone
		}
	}

	if state == stateDone && !doneEmitted {
		writeLine(c, dataPrefix+doneMarker+"\n")
		doneEmitted = true
	}

	// Persistence strictly after the terminal write; the caller's bytes are
	// already out and a failed insert must not change them.
	if state == stateDone {
		r.recorder.RecordTurn(c.Request.Context(), save, sessionID, chat.RoleAssistant, accumulated.String(), nil)
		metrics.StreamsRelayedTotal.Inc()
	}
	return nil
}

// The caller-facing body is SSE-shaped frames over plain text, matching what
// clients of this endpoint already parse.
func setupSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Transfer-Encoding", "chunked")
	c.Writer.WriteHeaderNow()
}

func writeLine(c *gin.Context, line string) {
	if _, err := c.Writer.Write([]byte(line + "\n")); err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Msg("unable to write to client stream")
		return
	}
	c.Writer.Flush()
}

// readUpstreamDetail extracts a detail string from an unparsed upstream error
// body. Only valid for responses issued with SetDoNotParseResponse.
func readUpstreamDetail(resp *resty.Response) string {
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return ""
	}
	defer resp.RawResponse.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.RawResponse.Body, maxErrorBodySize))
	if err != nil {
		return ""
	}
	return parseUpstreamDetail(raw)
}

// parseUpstreamDetail tolerates both OpenAI-style error envelopes and bare
// text bodies.
func parseUpstreamDetail(raw []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

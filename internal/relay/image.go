package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"omnichat/internal/domain/chat"
	"omnichat/internal/domain/endpoint"
	"omnichat/internal/domain/provider"
	"omnichat/internal/infrastructure/logger"
	"omnichat/internal/infrastructure/metrics"
)

// ErrNoImageData marks an upstream success response carrying no recognizable
// image payload.
var ErrNoImageData = errors.New("upstream response contained no image data")

// imageResponse covers the response shapes the orchestrator understands:
// OpenAI-style data arrays and Together-style output envelopes.
type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
	Output *struct {
		Choices []struct {
			ImageBase64 string `json:"image_base64"`
		} `json:"choices"`
	} `json:"output"`
}

// completeLine is the single terminal payload of a successful generation.
type completeLine struct {
	Content   string `json:"content"`
	ImagePath string `json:"image_path"`
	Success   bool   `json:"success"`
}

// GenerateImage drives one image generation over the chunked plain-text
// progress protocol. The response is committed immediately, so every outcome
// ends with exactly one COMPLETE: or ERROR: line inside the open body.
func (r *Relay) GenerateImage(c *gin.Context, resolved *endpoint.ResolvedEndpoint, prompt string, save bool, sessionID string) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Transfer-Encoding", "chunked")
	c.Writer.WriteHeaderNow()

	writeLine(c, "PROGRESS:Starting image generation")

	payload, err := provider.BuildImagePayload(resolved.BaseURL, resolved.ModelID, prompt)
	if err != nil {
		r.failImage(c, save, sessionID, err.Error())
		return
	}

	writeLine(c, "PROGRESS:Sending request to provider")

	ctx, cancel := context.WithTimeout(c.Request.Context(), r.imageTimeout)
	defer cancel()

	url := provider.ResolveURL(resolved.BaseURL, true)
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(resolved.APIKey).
		SetBody(payload).
		Post(url)
	if err != nil {
		metrics.RecordUpstreamError("transport")
		r.failImage(c, save, sessionID, provider.TransportErrorMessage(err))
		return
	}
	if resp.IsError() {
		metrics.RecordUpstreamError("status")
		r.failImage(c, save, sessionID, provider.UpstreamStatusMessage(resp.StatusCode(), parseUpstreamDetail(resp.Bytes())))
		return
	}

	writeLine(c, "PROGRESS:Processing response")

	// Parse the body ourselves; some providers answer with a bare or wrong
	// content type and content-type driven unmarshalling would miss them.
	var parsed imageResponse
	if err := json.Unmarshal(resp.Bytes(), &parsed); err != nil {
		r.failImage(c, save, sessionID, "Failed to parse the provider response")
		return
	}

	data, err := r.extractImageBytes(ctx, &parsed)
	if err != nil {
		r.failImage(c, save, sessionID, err.Error())
		return
	}

	imagePath, err := r.blobs.SaveImage(data, ".png")
	if err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Msg("failed to persist generated image")
		r.failImage(c, save, sessionID, "Failed to store the generated image")
		return
	}

	content := fmt.Sprintf("Generated an image for: %s", prompt)
	r.recorder.RecordTurn(c.Request.Context(), save, sessionID, chat.RoleAssistant, content, &imagePath)
	metrics.ImagesGeneratedTotal.Inc()

	line, err := json.Marshal(completeLine{
		Content:   content,
		ImagePath: imagePath,
		Success:   true,
	})
	if err != nil {
		r.failImage(c, save, sessionID, "Failed to encode the generation result")
		return
	}
	writeLine(c, "COMPLETE:"+string(line))
}

// extractImageBytes tries the known payload locations in order: inline
// base64, a fetchable URL, then a Together-style output envelope.
func (r *Relay) extractImageBytes(ctx context.Context, parsed *imageResponse) ([]byte, error) {
	if len(parsed.Data) > 0 {
		if b64 := parsed.Data[0].B64JSON; b64 != "" {
			data, err := base64.StdEncoding.DecodeString(b64)
			if err != nil {
				return nil, fmt.Errorf("invalid base64 image data: %w", err)
			}
			return data, nil
		}
		if url := parsed.Data[0].URL; url != "" {
			return r.fetchImage(ctx, url)
		}
	}
	if parsed.Output != nil && len(parsed.Output.Choices) > 0 {
		if b64 := parsed.Output.Choices[0].ImageBase64; b64 != "" {
			data, err := base64.StdEncoding.DecodeString(b64)
			if err != nil {
				return nil, fmt.Errorf("invalid base64 image data: %w", err)
			}
			return data, nil
		}
	}
	return nil, ErrNoImageData
}

func (r *Relay) fetchImage(ctx context.Context, url string) ([]byte, error) {
	resp, err := r.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch generated image: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch generated image: upstream returned %d", resp.StatusCode())
	}
	return resp.Bytes(), nil
}

// failImage records the failure as an assistant turn (when saving is on) and
// writes the single terminal ERROR line.
func (r *Relay) failImage(c *gin.Context, save bool, sessionID, message string) {
	r.recorder.RecordTurn(c.Request.Context(), save, sessionID, chat.RoleAssistant,
		"Image generation failed: "+message, nil)
	writeLine(c, "ERROR:"+message)
}

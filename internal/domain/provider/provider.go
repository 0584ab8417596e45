// Package provider adapts the uniform internal contract to each upstream
// provider's URL layout, payload shape, and error vocabulary.
package provider

import (
	"fmt"
	"strings"

	"omnichat/internal/domain/endpoint"
)

// imageModelFragments identifies image models by name substring. This is a
// heuristic, not a stored attribute; keep the list in sync with the providers
// actually deployed.
var imageModelFragments = []string{
	"flux",
	"dall-e",
	"dalle",
	"stable-diffusion",
	"sdxl",
	"imagen",
	"midjourney",
	"playground-v",
	"kandinsky",
}

// ClassifyModel reports whether a model id names an image-generation model.
func ClassifyModel(modelID string) endpoint.ModelType {
	lower := strings.ToLower(modelID)
	for _, fragment := range imageModelFragments {
		if strings.Contains(lower, fragment) {
			return endpoint.ModelTypeImage
		}
	}
	return endpoint.ModelTypeText
}

// ResolveURL turns a configured base URL into the concrete request URL.
// Provider branches for together/openai are kept separate even though they
// currently append the same suffix.
func ResolveURL(baseURL string, isImage bool) string {
	url := strings.TrimSuffix(baseURL, "/")

	if isImage {
		if strings.HasSuffix(url, "/images/generations") {
			return url
		}
		if strings.Contains(url, "together") {
			return url + "/images/generations"
		}
		if strings.Contains(url, "openai") {
			return url + "/images/generations"
		}
		return url + "/images/generations"
	}

	if strings.HasSuffix(url, "/chat/completions") {
		return url
	}
	return url + "/chat/completions"
}

// ErrImageUnsupported marks providers whose API has no image generation.
type ErrImageUnsupported struct {
	BaseURL string
}

func (e *ErrImageUnsupported) Error() string {
	return fmt.Sprintf("provider at %s does not support image generation via this API", e.BaseURL)
}

// BuildImagePayload shapes the image-generation request body for the provider
// recognized from the base URL. Unrecognized providers get the
// OpenAI-compatible shape.
func BuildImagePayload(baseURL, model, prompt string) (map[string]any, error) {
	switch {
	case strings.Contains(baseURL, "together.xyz"):
		return map[string]any{
			"model":           model,
			"prompt":          prompt,
			"width":           1024,
			"height":          1024,
			"steps":           20,
			"n":               1,
			"response_format": "b64_json",
		}, nil
	case strings.Contains(baseURL, "openai.com"):
		return map[string]any{
			"model":           model,
			"prompt":          prompt,
			"n":               1,
			"size":            "1024x1024",
			"response_format": "b64_json",
		}, nil
	case strings.Contains(baseURL, "anthropic.com"), strings.Contains(baseURL, "googleapis.com"):
		return nil, &ErrImageUnsupported{BaseURL: baseURL}
	default:
		return map[string]any{
			"model":           model,
			"prompt":          prompt,
			"n":               1,
			"size":            "1024x1024",
			"response_format": "b64_json",
		}, nil
	}
}

// UpstreamStatusMessage maps an upstream HTTP status to a human-readable
// message. detail carries the upstream error body when available.
func UpstreamStatusMessage(status int, detail string) string {
	switch status {
	case 401:
		return "Authentication failed: the configured API key was rejected by the provider"
	case 400:
		if detail != "" {
			return "The provider rejected the request: " + detail
		}
		return "The provider rejected the request as malformed"
	case 429:
		return "Rate limit exceeded: the provider is throttling requests, try again later"
	case 404:
		return "Model not found: the configured model id is unknown to the provider"
	case 500:
		return "The provider reported an internal server error"
	default:
		return fmt.Sprintf("The provider returned an unexpected status %d", status)
	}
}

// TransportErrorMessage maps a connection-level failure to a human-readable
// message.
func TransportErrorMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "Could not connect to the provider: connection refused"
	case strings.Contains(msg, "context deadline exceeded"), strings.Contains(msg, "timeout"):
		return "The provider did not respond in time"
	case strings.Contains(msg, "no such host"):
		return "Could not resolve the provider host"
	default:
		return "Failed to reach the provider: " + msg
	}
}

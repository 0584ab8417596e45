// Package relay drives the caller-facing chunked responses: SSE re-framing
// for text completions and the progress-line protocol for image generation.
package relay

import (
	"time"

	"resty.dev/v3"

	"omnichat/internal/domain/chat"
	"omnichat/internal/infrastructure/storage"
)

const (
	defaultStreamTimeout = 5 * time.Minute
	defaultImageTimeout  = 120 * time.Second
)

// Relay owns the upstream HTTP client and the best-effort persistence hooks
// shared by the text and image paths.
type Relay struct {
	client        *resty.Client
	recorder      *chat.Recorder
	blobs         *storage.LocalStorage
	streamTimeout time.Duration
	imageTimeout  time.Duration
}

type Option func(*Relay)

func WithStreamTimeout(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.streamTimeout = d
		}
	}
}

func WithImageTimeout(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.imageTimeout = d
		}
	}
}

func New(client *resty.Client, recorder *chat.Recorder, blobs *storage.LocalStorage, opts ...Option) *Relay {
	r := &Relay{
		client:        client,
		recorder:      recorder,
		blobs:         blobs,
		streamTimeout: defaultStreamTimeout,
		imageTimeout:  defaultImageTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

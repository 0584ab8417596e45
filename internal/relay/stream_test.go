package relay

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"omnichat/internal/domain/chat"
	"omnichat/internal/domain/endpoint"
	"omnichat/internal/infrastructure/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memRepo struct {
	sessions map[string]*chat.Session
	messages []*chat.Message
}

func newMemRepo() *memRepo {
	return &memRepo{sessions: make(map[string]*chat.Session)}
}

func (m *memRepo) CreateSession(_ context.Context, s *chat.Session) error {
	m.sessions[s.PublicID] = s
	return nil
}

func (m *memRepo) GetSession(_ context.Context, publicID string) (*chat.Session, error) {
	s, ok := m.sessions[publicID]
	if !ok {
		return nil, fmt.Errorf("session %s not found", publicID)
	}
	return s, nil
}

func (m *memRepo) ListSessions(_ context.Context) ([]*chat.Session, error) { return nil, nil }

func (m *memRepo) UpdateSessionTitle(_ context.Context, publicID, title string) error {
	if s, ok := m.sessions[publicID]; ok {
		s.Title = title
	}
	return nil
}

func (m *memRepo) DeleteSession(_ context.Context, publicID string) error {
	delete(m.sessions, publicID)
	return nil
}

func (m *memRepo) CreateMessage(_ context.Context, msg *chat.Message) error {
	msg.ID = uint(len(m.messages) + 1)
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memRepo) ListMessages(_ context.Context, sessionPublicID string) ([]*chat.Message, error) {
	var out []*chat.Message
	for _, msg := range m.messages {
		if msg.SessionID == sessionPublicID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func newTestRelay(t *testing.T, repo *memRepo) *Relay {
	t.Helper()
	blobs, err := storage.NewLocalStorage(t.TempDir(), "/uploads", zerolog.Nop())
	if err != nil {
		t.Fatalf("storage setup: %v", err)
	}
	return New(resty.New(), chat.NewRecorder(repo), blobs)
}

func newStreamContext() (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/chat", nil)
	return c, rec
}

func resolvedFor(upstreamURL string) *endpoint.ResolvedEndpoint {
	return &endpoint.ResolvedEndpoint{
		EndpointID:  "ep_test",
		ModelID:     "gpt-4o",
		ModelType:   endpoint.ModelTypeText,
		Temperature: 0.7,
		BaseURL:     upstreamURL,
		APIKey:      "sk-test",
	}
}

func sseUpstream(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected upstream path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(body))
	}))
}

func TestStreamChatRelaysFramesAndSingleDone(t *testing.T) {
	frame1 := `{"choices":[{"delta":{"content":"Hello"}}]}`
	frame2 := `{"choices":[{"delta":{"content":", world"}}]}`
	upstream := sseUpstream(t, "data: "+frame1+"\n\ndata: "+frame2+"\n\ndata: [DONE]\n\n")
	defer upstream.Close()

	repo := newMemRepo()
	r := newTestRelay(t, repo)
	c, rec := newStreamContext()

	if err := r.StreamChat(c, resolvedFor(upstream.URL), nil, true, "sess_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := rec.Body.String()
	want := "data: " + frame1 + "\n\ndata: " + frame2 + "\n\ndata: [DONE]\n\n"
	if got != want {
		t.Errorf("relayed body = %q, want %q", got, want)
	}
	if n := strings.Count(got, "data: [DONE]"); n != 1 {
		t.Errorf("expected exactly one [DONE] trailer, got %d", n)
	}

	if len(repo.messages) != 1 {
		t.Fatalf("expected one persisted assistant turn, got %d", len(repo.messages))
	}
	if repo.messages[0].Content != "Hello, world" {
		t.Errorf("persisted text = %q, want %q", repo.messages[0].Content, "Hello, world")
	}
	if repo.messages[0].Role != chat.RoleAssistant {
		t.Errorf("persisted role = %q, want assistant", repo.messages[0].Role)
	}
}

func TestStreamChatFinishReasonWithoutDone(t *testing.T) {
	frame := `{"choices":[{"delta":{"content":"Hi"}}]}`
	final := `{"choices":[{"delta":{},"finish_reason":"stop"}]}`
	upstream := sseUpstream(t, "data: "+frame+"\n\ndata: "+final+"\n\n")
	defer upstream.Close()

	repo := newMemRepo()
	r := newTestRelay(t, repo)
	c, rec := newStreamContext()

	if err := r.StreamChat(c, resolvedFor(upstream.URL), nil, true, "sess_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := rec.Body.String()
	if n := strings.Count(got, "data: [DONE]"); n != 1 {
		t.Fatalf("expected exactly one synthetic [DONE], got %d in %q", n, got)
	}
	if strings.Contains(got, "finish_reason") {
		t.Errorf("terminal frame must not be forwarded: %q", got)
	}
	if repo.messages[0].Content != "Hi" {
		t.Errorf("persisted text = %q, want %q", repo.messages[0].Content, "Hi")
	}
}

func TestStreamChatDropsUnparseableFragments(t *testing.T) {
	frame := `{"choices":[{"delta":{"content":"ok"}}]}`
	upstream := sseUpstream(t, "data: {broken json\n\ndata: "+frame+"\n\ndata: [DONE]\n\n")
	defer upstream.Close()

	repo := newMemRepo()
	r := newTestRelay(t, repo)
	c, rec := newStreamContext()

	if err := r.StreamChat(c, resolvedFor(upstream.URL), nil, false, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := rec.Body.String()
	if strings.Contains(got, "broken") {
		t.Errorf("unparseable fragment must be dropped, got %q", got)
	}
	if !strings.Contains(got, "data: "+frame+"\n\n") {
		t.Errorf("valid frame missing from relay: %q", got)
	}
}

func TestStreamChatSaveDisabledPersistsNothing(t *testing.T) {
	upstream := sseUpstream(t, `data: {"choices":[{"delta":{"content":"Hi"}}]}`+"\n\ndata: [DONE]\n\n")
	defer upstream.Close()

	repo := newMemRepo()
	r := newTestRelay(t, repo)
	c, _ := newStreamContext()

	if err := r.StreamChat(c, resolvedFor(upstream.URL), nil, false, "sess_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.messages) != 0 {
		t.Fatalf("save_to_db=false must insert nothing, got %d rows", len(repo.messages))
	}
}

func TestStreamChatUpstream401ReturnsAuthError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer upstream.Close()

	repo := newMemRepo()
	r := newTestRelay(t, repo)
	c, rec := newStreamContext()

	err := r.StreamChat(c, resolvedFor(upstream.URL), nil, true, "sess_1")
	if err == nil {
		t.Fatal("expected pre-commit error for upstream 401")
	}
	if !strings.Contains(err.Error(), "Authentication failed") {
		t.Errorf("expected authentication-specific message, got %q", err.Error())
	}
	if rec.Body.Len() != 0 {
		t.Errorf("nothing may be committed before the error, got %q", rec.Body.String())
	}
	if len(repo.messages) != 0 {
		t.Errorf("failed stream must not persist, got %d rows", len(repo.messages))
	}
}

func TestStreamChatUpstream429ReturnsRateLimitError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	r := newTestRelay(t, newMemRepo())
	c, _ := newStreamContext()

	err := r.StreamChat(c, resolvedFor(upstream.URL), nil, false, "")
	if err == nil || !strings.Contains(err.Error(), "Rate limit") {
		t.Fatalf("expected rate-limit message, got %v", err)
	}
}

func TestStreamChatLineSpanningChunks(t *testing.T) {
	frame := `{"choices":[{"delta":{"content":"split across chunks"}}]}`
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		full := "data: " + frame + "\n\ndata: [DONE]\n\n"
		// Flush mid-line so the frame arrives in two network chunks.
		half := len(full) / 2
		_, _ = w.Write([]byte(full[:half]))
		flusher.Flush()
		_, _ = w.Write([]byte(full[half:]))
	}))
	defer upstream.Close()

	repo := newMemRepo()
	r := newTestRelay(t, repo)
	c, rec := newStreamContext()

	if err := r.StreamChat(c, resolvedFor(upstream.URL), nil, true, "sess_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "data: "+frame+"\n\n") {
		t.Errorf("frame spanning chunks was not reassembled: %q", rec.Body.String())
	}
	if repo.messages[0].Content != "split across chunks" {
		t.Errorf("persisted text = %q", repo.messages[0].Content)
	}
}

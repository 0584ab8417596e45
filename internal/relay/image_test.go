package relay

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"omnichat/internal/domain/chat"
	"omnichat/internal/domain/endpoint"
	"omnichat/internal/infrastructure/storage"
)

func newImageRelay(t *testing.T, repo *memRepo) (*Relay, string) {
	t.Helper()
	dir := t.TempDir()
	blobs, err := storage.NewLocalStorage(dir, "/uploads", zerolog.Nop())
	if err != nil {
		t.Fatalf("storage setup: %v", err)
	}
	return New(resty.New(), chat.NewRecorder(repo), blobs), dir
}

func imageResolved(upstreamURL string) *endpoint.ResolvedEndpoint {
	return &endpoint.ResolvedEndpoint{
		EndpointID: "ep_img",
		ModelID:    "flux-schnell",
		ModelType:  endpoint.ModelTypeImage,
		BaseURL:    upstreamURL,
		APIKey:     "sk-test",
	}
}

func terminalLine(t *testing.T, body string) string {
	t.Helper()
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	if len(lines) == 0 {
		t.Fatal("empty response body")
	}
	return lines[len(lines)-1]
}

func TestGenerateImageB64RoundTrip(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x01, 0x02}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/images/generations") {
			t.Errorf("unexpected upstream path %s", r.URL.Path)
		}
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["response_format"] != "b64_json" {
			t.Errorf("expected b64_json request, got %v", payload)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(raw)}},
		})
	}))
	defer upstream.Close()

	repo := newMemRepo()
	r, dir := newImageRelay(t, repo)
	c, rec := newStreamContext()

	r.GenerateImage(c, imageResolved(upstream.URL), "a red fox", true, "sess_1")

	body := rec.Body.String()
	if !strings.Contains(body, "PROGRESS:") {
		t.Errorf("expected progress lines, got %q", body)
	}
	line := terminalLine(t, body)
	if !strings.HasPrefix(line, "COMPLETE:") {
		t.Fatalf("terminal line = %q, want COMPLETE:", line)
	}

	var result completeLine
	if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "COMPLETE:")), &result); err != nil {
		t.Fatalf("invalid COMPLETE payload: %v", err)
	}
	if !result.Success || result.ImagePath == "" {
		t.Fatalf("unexpected result %+v", result)
	}

	stored, err := os.ReadFile(filepath.Join(dir, filepath.Base(result.ImagePath)))
	if err != nil {
		t.Fatalf("stored blob unreadable: %v", err)
	}
	if string(stored) != string(raw) {
		t.Errorf("stored blob differs from decoded base64")
	}

	if len(repo.messages) != 1 {
		t.Fatalf("expected one assistant turn, got %d", len(repo.messages))
	}
	if repo.messages[0].ImagePath == nil || *repo.messages[0].ImagePath != result.ImagePath {
		t.Errorf("persisted image path mismatch: %+v", repo.messages[0])
	}
}

func TestGenerateImageURLFallback(t *testing.T) {
	raw := []byte("fake image bytes")
	mux := http.NewServeMux()
	var upstream *httptest.Server
	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": upstream.URL + "/blob.png"}},
		})
	})
	mux.HandleFunc("/blob.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(raw)
	})
	upstream = httptest.NewServer(mux)
	defer upstream.Close()

	repo := newMemRepo()
	r, dir := newImageRelay(t, repo)
	c, rec := newStreamContext()

	r.GenerateImage(c, imageResolved(upstream.URL+"/v1"), "a red fox", false, "")

	line := terminalLine(t, rec.Body.String())
	if !strings.HasPrefix(line, "COMPLETE:") {
		t.Fatalf("terminal line = %q, want COMPLETE:", line)
	}
	var result completeLine
	if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "COMPLETE:")), &result); err != nil {
		t.Fatalf("invalid COMPLETE payload: %v", err)
	}
	stored, err := os.ReadFile(filepath.Join(dir, filepath.Base(result.ImagePath)))
	if err != nil {
		t.Fatalf("stored blob unreadable: %v", err)
	}
	if string(stored) != string(raw) {
		t.Errorf("fetched blob bytes differ")
	}
	if len(repo.messages) != 0 {
		t.Errorf("save disabled must not persist, got %d rows", len(repo.messages))
	}
}

func TestGenerateImageTogetherOutputShape(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"output": map[string]any{
				"choices": []map[string]string{{"image_base64": base64.StdEncoding.EncodeToString(raw)}},
			},
		})
	}))
	defer upstream.Close()

	r, _ := newImageRelay(t, newMemRepo())
	c, rec := newStreamContext()

	r.GenerateImage(c, imageResolved(upstream.URL), "x", false, "")

	if !strings.HasPrefix(terminalLine(t, rec.Body.String()), "COMPLETE:") {
		t.Fatalf("expected COMPLETE terminal, got %q", rec.Body.String())
	}
}

func TestGenerateImageIgnoresUpstreamContentType(t *testing.T) {
	raw := []byte{0xde, 0xad, 0xbe, 0xef}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Valid JSON body under a misleading content type.
		w.Header().Set("Content-Type", "application/octet-stream")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(raw)}},
		})
	}))
	defer upstream.Close()

	r, dir := newImageRelay(t, newMemRepo())
	c, rec := newStreamContext()

	r.GenerateImage(c, imageResolved(upstream.URL), "x", false, "")

	line := terminalLine(t, rec.Body.String())
	if !strings.HasPrefix(line, "COMPLETE:") {
		t.Fatalf("terminal line = %q, want COMPLETE:", line)
	}
	var result completeLine
	if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "COMPLETE:")), &result); err != nil {
		t.Fatalf("invalid COMPLETE payload: %v", err)
	}
	stored, err := os.ReadFile(filepath.Join(dir, filepath.Base(result.ImagePath)))
	if err != nil {
		t.Fatalf("stored blob unreadable: %v", err)
	}
	if string(stored) != string(raw) {
		t.Errorf("stored blob differs from decoded base64")
	}
}

func TestGenerateImageNoImageData(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer upstream.Close()

	repo := newMemRepo()
	r, _ := newImageRelay(t, repo)
	c, rec := newStreamContext()

	r.GenerateImage(c, imageResolved(upstream.URL), "x", true, "sess_1")

	line := terminalLine(t, rec.Body.String())
	if !strings.HasPrefix(line, "ERROR:") {
		t.Fatalf("terminal line = %q, want ERROR:", line)
	}
	if len(repo.messages) != 1 || !strings.Contains(repo.messages[0].Content, "failed") {
		t.Errorf("failure must persist an assistant turn recording it, got %+v", repo.messages)
	}
}

func TestGenerateImageUnsupportedProvider(t *testing.T) {
	repo := newMemRepo()
	r, _ := newImageRelay(t, repo)
	c, rec := newStreamContext()

	resolved := imageResolved("https://api.anthropic.com/v1")
	r.GenerateImage(c, resolved, "x", false, "")

	line := terminalLine(t, rec.Body.String())
	if !strings.HasPrefix(line, "ERROR:") {
		t.Fatalf("terminal line = %q, want ERROR:", line)
	}
	if !strings.Contains(line, "does not support image generation") {
		t.Errorf("unexpected error message: %q", line)
	}
}

func TestGenerateImageUpstream401(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer upstream.Close()

	r, _ := newImageRelay(t, newMemRepo())
	c, rec := newStreamContext()

	r.GenerateImage(c, imageResolved(upstream.URL), "x", false, "")

	line := terminalLine(t, rec.Body.String())
	if !strings.HasPrefix(line, "ERROR:") || !strings.Contains(line, "Authentication failed") {
		t.Errorf("expected inline auth error, got %q", line)
	}
	if n := strings.Count(rec.Body.String(), "ERROR:"); n != 1 {
		t.Errorf("expected exactly one terminal line, got %d", n)
	}
}

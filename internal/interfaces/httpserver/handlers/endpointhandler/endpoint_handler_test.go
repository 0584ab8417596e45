package endpointhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"omnichat/internal/domain/endpoint"
)

type fakeEndpointRepo struct {
	endpoints map[string]*endpoint.Endpoint
}

func newFakeEndpointRepo() *fakeEndpointRepo {
	return &fakeEndpointRepo{endpoints: make(map[string]*endpoint.Endpoint)}
}

func (f *fakeEndpointRepo) Resolve(_ context.Context, publicID string) (*endpoint.ResolvedEndpoint, error) {
	return nil, fmt.Errorf("endpoint %s not found", publicID)
}

func (f *fakeEndpointRepo) CreateEndpoint(_ context.Context, e *endpoint.Endpoint) error {
	f.endpoints[e.PublicID] = e
	return nil
}

func (f *fakeEndpointRepo) GetEndpoint(_ context.Context, publicID string) (*endpoint.Endpoint, error) {
	e, ok := f.endpoints[publicID]
	if !ok {
		return nil, fmt.Errorf("endpoint %s not found", publicID)
	}
	return e, nil
}

func (f *fakeEndpointRepo) ListEndpoints(_ context.Context) ([]*endpoint.Endpoint, error) {
	out := make([]*endpoint.Endpoint, 0, len(f.endpoints))
	for _, e := range f.endpoints {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEndpointRepo) UpdateEndpoint(_ context.Context, e *endpoint.Endpoint) error {
	f.endpoints[e.PublicID] = e
	return nil
}

func (f *fakeEndpointRepo) DeleteEndpoint(_ context.Context, publicID string) error {
	delete(f.endpoints, publicID)
	return nil
}

func (f *fakeEndpointRepo) CreateCredential(_ context.Context, _ *endpoint.Credential) error {
	return nil
}

func (f *fakeEndpointRepo) GetCredential(_ context.Context, publicID string) (*endpoint.Credential, error) {
	return nil, fmt.Errorf("credential %s not found", publicID)
}

func (f *fakeEndpointRepo) ListCredentials(_ context.Context) ([]*endpoint.Credential, error) {
	return nil, nil
}

func (f *fakeEndpointRepo) UpdateCredential(_ context.Context, _ *endpoint.Credential) error {
	return nil
}

func (f *fakeEndpointRepo) DeleteCredential(_ context.Context, publicID string) error {
	return nil
}

func (f *fakeEndpointRepo) CreatePlatform(_ context.Context, _ *endpoint.Platform) error {
	return nil
}

func (f *fakeEndpointRepo) GetPlatformByName(_ context.Context, name string) (*endpoint.Platform, error) {
	return nil, fmt.Errorf("platform %s not found", name)
}

func (f *fakeEndpointRepo) ListPlatforms(_ context.Context) ([]*endpoint.Platform, error) {
	return nil, nil
}

func newCreateContext(body string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/endpoints", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestCreateEndpointKeepsSystemPrompt(t *testing.T) {
	repo := newFakeEndpointRepo()
	handler := NewEndpointHandler(endpoint.NewService(repo))

	c, rec := newCreateContext(`{
		"name": "terse-gpt",
		"platform_id": "plat_1",
		"credential_id": "cred_1",
		"model_id": "gpt-4o",
		"system_prompt": "You are terse."
	}`)
	handler.CreateEndpoint(c)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	var response struct {
		ID           string  `json:"id"`
		SystemPrompt *string `json:"system_prompt"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if response.SystemPrompt == nil || *response.SystemPrompt != "You are terse." {
		t.Errorf("response lost system prompt: %+v", response)
	}

	stored, ok := repo.endpoints[response.ID]
	if !ok {
		t.Fatalf("endpoint %s not stored", response.ID)
	}
	if stored.SystemPrompt == nil || *stored.SystemPrompt != "You are terse." {
		t.Errorf("stored endpoint lost system prompt: %+v", stored)
	}
	if stored.Temperature != endpoint.DefaultTemperature {
		t.Errorf("temperature default not applied: %v", stored.Temperature)
	}
}

func TestCreateEndpointRejectsCustomWithoutBaseURL(t *testing.T) {
	handler := NewEndpointHandler(endpoint.NewService(newFakeEndpointRepo()))

	c, rec := newCreateContext(`{
		"name": "broken",
		"is_custom": true,
		"credential_id": "cred_1",
		"model_id": "gpt-4o"
	}`)
	handler.CreateEndpoint(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}
}

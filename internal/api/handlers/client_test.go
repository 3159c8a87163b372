package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
)

type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) CreateClient(ctx context.Context, slug, name string, tier domain.HostingTier, databaseURL string) (*domain.Client, error) {
	args := m.Called(ctx, slug, name, tier, databaseURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) ListClients(ctx context.Context) ([]*domain.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Client), args.Error(1)
}

func (m *MockClientService) DeactivateClient(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClientService) CreateAPIKey(ctx context.Context, clientID, name string) (string, error) {
	args := m.Called(ctx, clientID, name)
	return args.String(0), args.Error(1)
}

func (m *MockClientService) RevokeAPIKey(ctx context.Context, keyID string) error {
	args := m.Called(ctx, keyID)
	return args.Error(0)
}

func (m *MockClientService) ListAPIKeys(ctx context.Context, clientID string) ([]*domain.APIKey, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func newTestClient() *domain.Client {
	return &domain.Client{
		ID:        "client-456",
		Slug:      "acme",
		Name:      "Acme Corp",
		Tier:      domain.HostingTierShared,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestClientHandler_Create_Success(t *testing.T) {
	mockSvc := new(MockClientService)
	handler := NewClientHandler(mockSvc)

	mockSvc.On("CreateClient", mock.Anything, "acme", "Acme Corp", domain.HostingTierShared, "").Return(newTestClient(), nil)

	body := `{"slug":"acme","name":"Acme Corp"}`
	req := httptest.NewRequest(http.MethodPost, "/clients", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "acme", data["slug"])
	assert.Equal(t, "shared", data["tier"])
	mockSvc.AssertExpectations(t)
}

func TestClientHandler_Create_DedicatedTier(t *testing.T) {
	mockSvc := new(MockClientService)
	handler := NewClientHandler(mockSvc)

	dedicated := newTestClient()
	dedicated.Tier = domain.HostingTierDedicated
	dedicated.DatabaseURL = "postgres://tenant:pw@db.example.com/acme"
	mockSvc.On("CreateClient", mock.Anything, "acme", "Acme Corp", domain.HostingTierDedicated,
		"postgres://tenant:pw@db.example.com/acme").Return(dedicated, nil)

	body := `{"slug":"acme","name":"Acme Corp","tier":"dedicated","database_url":"postgres://tenant:pw@db.example.com/acme"}`
	req := httptest.NewRequest(http.MethodPost, "/clients", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestClientHandler_Create_MissingSlug(t *testing.T) {
	handler := NewClientHandler(new(MockClientService))

	body := `{"name":"Acme Corp"}`
	req := httptest.NewRequest(http.MethodPost, "/clients", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "slug is required")
}

func TestClientHandler_Create_Duplicate(t *testing.T) {
	mockSvc := new(MockClientService)
	handler := NewClientHandler(mockSvc)

	mockSvc.On("CreateClient", mock.Anything, "acme", "Acme Corp", domain.HostingTierShared, "").
		Return(nil, domain.ErrClientAlreadyExists)

	body := `{"slug":"acme","name":"Acme Corp"}`
	req := httptest.NewRequest(http.MethodPost, "/clients", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestClientHandler_Get_Success(t *testing.T) {
	mockSvc := new(MockClientService)
	handler := NewClientHandler(mockSvc)

	mockSvc.On("GetClient", mock.Anything, "client-456").Return(newTestClient(), nil)

	req := httptest.NewRequest(http.MethodGet, "/clients/client-456", nil)
	req = withURLParam(req, "id", "client-456")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestClientHandler_Deactivate_Success(t *testing.T) {
	mockSvc := new(MockClientService)
	handler := NewClientHandler(mockSvc)

	mockSvc.On("DeactivateClient", mock.Anything, "client-456").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/clients/client-456", nil)
	req = withURLParam(req, "id", "client-456")
	w := httptest.NewRecorder()

	handler.Deactivate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deactivated")
	mockSvc.AssertExpectations(t)
}

func TestClientHandler_CreateAPIKey_ReturnsTokenOnce(t *testing.T) {
	mockSvc := new(MockClientService)
	handler := NewClientHandler(mockSvc)

	mockSvc.On("CreateAPIKey", mock.Anything, "client-456", "production").
		Return("sf_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", nil)

	body := `{"client_id":"client-456","name":"production"}`
	req := httptest.NewRequest(http.MethodPost, "/apikeys", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.CreateAPIKey(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Contains(t, data["token"], "sf_")
	mockSvc.AssertExpectations(t)
}

func TestClientHandler_RevokeAPIKey_NotFound(t *testing.T) {
	mockSvc := new(MockClientService)
	handler := NewClientHandler(mockSvc)

	mockSvc.On("RevokeAPIKey", mock.Anything, "key-missing").Return(domain.ErrAPIKeyNotFound)

	req := httptest.NewRequest(http.MethodDelete, "/apikeys/key-missing", nil)
	req = withURLParam(req, "id", "key-missing")
	w := httptest.NewRecorder()

	handler.RevokeAPIKey(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClientHandler_ListAPIKeys_Success(t *testing.T) {
	mockSvc := new(MockClientService)
	handler := NewClientHandler(mockSvc)

	revokedAt := time.Now().UTC()
	mockSvc.On("ListAPIKeys", mock.Anything, "client-456").Return([]*domain.APIKey{
		{ID: "key-1", ClientID: "client-456", Name: "production", KeyHash: "hash", CreatedAt: time.Now().UTC()},
		{ID: "key-2", ClientID: "client-456", Name: "staging", KeyHash: "hash", CreatedAt: time.Now().UTC(), RevokedAt: &revokedAt},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/apikeys?client_id=client-456", nil)
	w := httptest.NewRecorder()

	handler.ListAPIKeys(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].([]interface{})
	require.Len(t, data, 2)
	second := data[1].(map[string]interface{})
	assert.Equal(t, true, second["revoked"])
	mockSvc.AssertExpectations(t)
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lhyphendixon/sidekick-forge/internal/api"
	"github.com/lhyphendixon/sidekick-forge/internal/domain"
)

type ClientService interface {
	CreateClient(ctx context.Context, slug, name string, tier domain.HostingTier, databaseURL string) (*domain.Client, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	ListClients(ctx context.Context) ([]*domain.Client, error)
	DeactivateClient(ctx context.Context, id string) error
	CreateAPIKey(ctx context.Context, clientID, name string) (string, error)
	RevokeAPIKey(ctx context.Context, keyID string) error
	ListAPIKeys(ctx context.Context, clientID string) ([]*domain.APIKey, error)
}

type ClientHandler struct {
	svc ClientService
}

func NewClientHandler(svc ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

type CreateClientRequest struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Tier        string `json:"tier,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`
}

type ClientResponse struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Tier      string `json:"tier"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

func clientToResponse(c *domain.Client) *ClientResponse {
	return &ClientResponse{
		ID:        c.ID,
		Slug:      c.Slug,
		Name:      c.Name,
		Tier:      string(c.Tier),
		Active:    c.Active,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Slug == "" {
		api.Error(w, http.StatusBadRequest, "slug is required")
		return
	}
	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	tier := domain.HostingTier(req.Tier)
	if req.Tier == "" {
		tier = domain.HostingTierShared
	}

	client, err := h.svc.CreateClient(r.Context(), req.Slug, req.Name, tier, req.DatabaseURL)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, clientToResponse(client))
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	client, err := h.svc.GetClient(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, clientToResponse(client))
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.ListClients(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ClientResponse, len(clients))
	for i, c := range clients {
		responses[i] = clientToResponse(c)
	}

	api.Success(w, http.StatusOK, responses)
}

func (h *ClientHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.DeactivateClient(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

type CreateAPIKeyRequest struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
}

type APIKeyResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

type APIKeyMetadataResponse struct {
	ID        string `json:"id"`
	ClientID  string `json:"client_id"`
	Name      string `json:"name"`
	Revoked   bool   `json:"revoked"`
	CreatedAt string `json:"created_at"`
}

func (h *ClientHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ClientID == "" {
		api.Error(w, http.StatusBadRequest, "client_id is required")
		return
	}
	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	token, err := h.svc.CreateAPIKey(r.Context(), req.ClientID, req.Name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	// The plaintext token is returned exactly once; only its hash is stored.
	api.Success(w, http.StatusCreated, APIKeyResponse{
		Token: token,
		Name:  req.Name,
	})
}

func (h *ClientHandler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.RevokeAPIKey(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *ClientHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		api.Error(w, http.StatusBadRequest, "client_id is required")
		return
	}

	keys, err := h.svc.ListAPIKeys(r.Context(), clientID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*APIKeyMetadataResponse, len(keys))
	for i, k := range keys {
		responses[i] = &APIKeyMetadataResponse{
			ID:        k.ID,
			ClientID:  k.ClientID,
			Name:      k.Name,
			Revoked:   k.IsRevoked(),
			CreatedAt: k.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	api.Success(w, http.StatusOK, responses)
}

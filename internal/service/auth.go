package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
)

const apiKeyPrefix = "sf_"

type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
}

type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
	GetByClientID(ctx context.Context, clientID string) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id string) error
}

type AuthService struct {
	clientRepo ClientRepository
	keyRepo    APIKeyRepository
	uuidGen    UUIDGenerator
}

func NewAuthService(clientRepo ClientRepository, keyRepo APIKeyRepository, uuidGen UUIDGenerator) *AuthService {
	return &AuthService{
		clientRepo: clientRepo,
		keyRepo:    keyRepo,
		uuidGen:    uuidGen,
	}
}

func (s *AuthService) CreateClient(ctx context.Context, slug, name string, tier domain.HostingTier, databaseURL string) (*domain.Client, error) {
	if slug == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "client slug is required")
	}
	if name == "" {
		name = slug
	}

	now := time.Now().UTC()
	client := &domain.Client{
		ID:          s.uuidGen.NewString(),
		Slug:        slug,
		Name:        name,
		Tier:        tier,
		DatabaseURL: databaseURL,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := domain.ValidateClient(client); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

func (s *AuthService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return s.clientRepo.GetByID(ctx, id)
}

func (s *AuthService) GetClientBySlug(ctx context.Context, slug string) (*domain.Client, error) {
	return s.clientRepo.GetBySlug(ctx, slug)
}

func (s *AuthService) ListClients(ctx context.Context) ([]*domain.Client, error) {
	return s.clientRepo.List(ctx)
}

// DeactivateClient flips the client inactive. Rows are kept so transcripts
// and documents stay auditable.
func (s *AuthService) DeactivateClient(ctx context.Context, id string) error {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	client.Active = false
	client.UpdatedAt = time.Now().UTC()
	return s.clientRepo.Update(ctx, client)
}

func (s *AuthService) CreateAPIKey(ctx context.Context, clientID, name string) (string, error) {
	if clientID == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "client ID is required")
	}
	if name == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}

	_, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return "", err
	}

	token, err := generateAPIToken()
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate API key", err)
	}

	hash := hashToken(token)

	key := &domain.APIKey{
		ID:        s.uuidGen.NewString(),
		ClientID:  clientID,
		Name:      name,
		KeyHash:   hash,
		CreatedAt: time.Now().UTC(),
		RevokedAt: nil,
	}

	if err := domain.ValidateAPIKey(key); err != nil {
		return "", err
	}

	if err := s.keyRepo.Create(ctx, key); err != nil {
		return "", err
	}

	return token, nil
}

// CreateAPIKeyWithToken registers a caller-supplied token, used by the
// startup bootstrap so deployments can pin a known key.
func (s *AuthService) CreateAPIKeyWithToken(ctx context.Context, clientID, name, token string) error {
	if clientID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "client ID is required")
	}
	if name == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}
	if !IsValidAPIToken(token) {
		return domain.NewDomainError(domain.ErrCodeValidation, "invalid API key format (expected sf_<64 hex chars>)")
	}

	_, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return err
	}

	key := &domain.APIKey{
		ID:        s.uuidGen.NewString(),
		ClientID:  clientID,
		Name:      name,
		KeyHash:   hashToken(token),
		CreatedAt: time.Now().UTC(),
		RevokedAt: nil,
	}

	if err := domain.ValidateAPIKey(key); err != nil {
		return err
	}

	return s.keyRepo.Create(ctx, key)
}

// ValidateAPIKey resolves a bearer token to the owning client ID. Revoked
// keys and inactive clients are rejected.
func (s *AuthService) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	if !IsValidAPIToken(token) {
		return "", domain.ErrInvalidAPIKey
	}

	key, err := s.keyRepo.GetByHash(ctx, hashToken(token))
	if err != nil {
		if err == domain.ErrAPIKeyNotFound {
			return "", domain.ErrInvalidAPIKey
		}
		return "", err
	}

	if key.IsRevoked() {
		return "", domain.ErrAPIKeyRevoked
	}

	client, err := s.clientRepo.GetByID(ctx, key.ClientID)
	if err != nil {
		return "", err
	}
	if !client.Active {
		return "", domain.ErrInvalidAPIKey
	}

	return key.ClientID, nil
}

func (s *AuthService) RevokeAPIKey(ctx context.Context, keyID string) error {
	if keyID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key ID is required")
	}

	return s.keyRepo.Revoke(ctx, keyID)
}

func (s *AuthService) ListAPIKeys(ctx context.Context, clientID string) ([]*domain.APIKey, error) {
	if clientID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "client ID is required")
	}

	return s.keyRepo.GetByClientID(ctx, clientID)
}

func generateAPIToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(bytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func IsValidAPIToken(token string) bool {
	if !strings.HasPrefix(token, apiKeyPrefix) {
		return false
	}
	hexPart := token[len(apiKeyPrefix):]
	if len(hexPart) != 64 {
		return false
	}
	for _, c := range hexPart {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

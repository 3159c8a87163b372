package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/livekit"
	"github.com/lhyphendixon/sidekick-forge/internal/pagination"
	"github.com/lhyphendixon/sidekick-forge/internal/providers"
	"github.com/lhyphendixon/sidekick-forge/internal/worker"
)

// MockAgentRepository is a mock implementation of AgentRepositoryInterface
type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) Create(ctx context.Context, a *domain.Agent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAgentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *MockAgentRepository) GetBySlug(ctx context.Context, slug string) (*domain.Agent, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *MockAgentRepository) List(ctx context.Context, cursor *pagination.Cursor, limit int) (*AgentPageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AgentPageResult), args.Error(1)
}

func (m *MockAgentRepository) Update(ctx context.Context, a *domain.Agent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAgentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDocumentRepository is a mock implementation of DocumentRepositoryInterface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DocumentPageResult), args.Error(1)
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateText(ctx context.Context, id, text string) error {
	args := m.Called(ctx, id, text)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockChunkRepository is a mock implementation of ChunkRepositoryInterface
type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) CreateBatch(ctx context.Context, chunks []*domain.DocumentChunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockChunkRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockChunkRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*SearchResult, error) {
	args := m.Called(ctx, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*SearchResult), args.Error(1)
}

// MockTranscriptRepository is a mock implementation of TranscriptRepositoryInterface
type MockTranscriptRepository struct {
	mock.Mock
}

func (m *MockTranscriptRepository) Append(ctx context.Context, t *domain.ConversationTranscript) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTranscriptRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.ConversationTranscript, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ConversationTranscript), args.Error(1)
}

func (m *MockTranscriptRepository) ListByRoom(ctx context.Context, roomName string, limit int) ([]*domain.ConversationTranscript, error) {
	args := m.Called(ctx, roomName, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ConversationTranscript), args.Error(1)
}

func (m *MockTranscriptRepository) GetText(ctx context.Context, transcriptID string) (string, error) {
	args := m.Called(ctx, transcriptID)
	return args.String(0), args.Error(1)
}

func (m *MockTranscriptRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	args := m.Called(ctx, id, embedding)
	return args.Error(0)
}

// mockTenantRepos bundles the repository mocks behind TenantRepositories.
type mockTenantRepos struct {
	agents      *MockAgentRepository
	documents   *MockDocumentRepository
	chunks      *MockChunkRepository
	transcripts *MockTranscriptRepository
}

func newMockTenantRepos() *mockTenantRepos {
	return &mockTenantRepos{
		agents:      new(MockAgentRepository),
		documents:   new(MockDocumentRepository),
		chunks:      new(MockChunkRepository),
		transcripts: new(MockTranscriptRepository),
	}
}

func (m *mockTenantRepos) Agents() AgentRepositoryInterface           { return m.agents }
func (m *mockTenantRepos) Documents() DocumentRepositoryInterface     { return m.documents }
func (m *mockTenantRepos) Chunks() ChunkRepositoryInterface           { return m.chunks }
func (m *mockTenantRepos) Transcripts() TranscriptRepositoryInterface { return m.transcripts }

// staticResolver returns the same repositories for every client.
type staticResolver struct {
	repos TenantRepositories
	err   error
}

func (r *staticResolver) Resolve(ctx context.Context, clientID string) (TenantRepositories, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.repos, nil
}

// MockEmbeddingJobRepository is a mock implementation of EmbeddingJobRepositoryInterface
type MockEmbeddingJobRepository struct {
	mock.Mock
}

func (m *MockEmbeddingJobRepository) Create(ctx context.Context, job *domain.EmbeddingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockStorageClient is a mock implementation of StorageClientInterface
type MockStorageClient struct {
	mock.Mock
}

func (m *MockStorageClient) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorageClient) HeadObject(ctx context.Context, key string) (*ObjectMetadata, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ObjectMetadata), args.Error(1)
}

// MockObjectTextFetcher is a mock implementation of ObjectTextFetcher
type MockObjectTextFetcher struct {
	mock.Mock
}

func (m *MockObjectTextFetcher) GetObjectText(ctx context.Context, key string, maxBytes int64) ([]byte, error) {
	args := m.Called(ctx, key, maxBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockClientRepository is a mock implementation of ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, c *domain.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) GetBySlug(ctx context.Context, slug string) (*domain.Client, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Client), args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, c *domain.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockAPIKeyRepository is a mock implementation of APIKeyRepository
type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) GetByHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) GetByClientID(ctx context.Context, clientID string) ([]*domain.APIKey, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) Revoke(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRoomClient is a mock implementation of RoomClient
type MockRoomClient struct {
	mock.Mock
	minter *livekit.TokenMinter
}

func newMockRoomClient() *MockRoomClient {
	return &MockRoomClient{minter: livekit.NewTokenMinter("api-key", "api-secret")}
}

func (m *MockRoomClient) CreateRoom(ctx context.Context, name string, emptyTimeout time.Duration) (*livekit.Room, error) {
	args := m.Called(ctx, name, emptyTimeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*livekit.Room), args.Error(1)
}

func (m *MockRoomClient) DeleteRoom(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockRoomClient) Minter() *livekit.TokenMinter {
	return m.minter
}

// MockWorkerManager is a mock implementation of WorkerManager
type MockWorkerManager struct {
	mock.Mock
}

func (m *MockWorkerManager) Spawn(ctx context.Context, req worker.SpawnRequest) (*worker.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worker.Session), args.Error(1)
}

func (m *MockWorkerManager) Stop(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockWorkerManager) Get(sessionID string) (*worker.Session, bool) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*worker.Session), args.Bool(1)
}

func (m *MockWorkerManager) List() []worker.Session {
	args := m.Called()
	return args.Get(0).([]worker.Session)
}

// MockChatProvider is a mock implementation of ChatProvider
type MockChatProvider struct {
	mock.Mock
}

func (m *MockChatProvider) ChatCompletion(ctx context.Context, provider domain.LLMProvider, model string, messages []providers.ChatMessage, temperature float64) (string, error) {
	args := m.Called(ctx, provider, model, messages, temperature)
	return args.String(0), args.Error(1)
}

// seqUUIDGen returns deterministic IDs for assertions.
type seqUUIDGen struct {
	n int
}

func (g *seqUUIDGen) NewString() string {
	g.n++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", g.n)
}

func testTime() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func testVoiceConfig() domain.VoiceConfig {
	return domain.VoiceConfig{
		LLMProvider: domain.LLMProviderOpenAI,
		LLMModel:    "gpt-4o-mini",
		STTProvider: domain.STTProviderDeepgram,
		STTModel:    "nova-2",
		TTSProvider: domain.TTSProviderElevenLabs,
		TTSVoiceID:  "voice-1",
		Temperature: 0.7,
	}
}

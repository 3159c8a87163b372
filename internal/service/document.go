package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/pagination"
	"github.com/lhyphendixon/sidekick-forge/internal/telemetry"
)

// StorageClientInterface abstracts object storage for raw document uploads.
type StorageClientInterface interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
	HeadObject(ctx context.Context, key string) (*ObjectMetadata, error)
}

type ObjectMetadata struct {
	ContentLength int64
	ContentType   string
	ETag          string
}

// DocumentService handles knowledge-base document ingestion. Raw bytes go to
// object storage via presigned URLs; text and embeddings land in the tenant
// database.
type DocumentService struct {
	tenants       TenantResolver
	storageClient StorageClientInterface
	jobRepo       EmbeddingJobRepositoryInterface
	uuidGen       UUIDGenerator
}

func NewDocumentService(tenants TenantResolver, storageClient StorageClientInterface, jobRepo EmbeddingJobRepositoryInterface) *DocumentService {
	return &DocumentService{
		tenants:       tenants,
		storageClient: storageClient,
		jobRepo:       jobRepo,
		uuidGen:       &DefaultUUIDGenerator{},
	}
}

func NewDocumentServiceWithUUIDGen(tenants TenantResolver, storageClient StorageClientInterface, jobRepo EmbeddingJobRepositoryInterface, uuidGen UUIDGenerator) *DocumentService {
	s := NewDocumentService(tenants, storageClient, jobRepo)
	s.uuidGen = uuidGen
	return s
}

type InitUploadInput struct {
	ClientID    string
	AgentID     string
	Title       string
	Filename    string
	ContentType string
}

type InitUploadResult struct {
	DocumentID string
	StorageKey string
	UploadURL  string
}

// InitUpload registers a pending document and returns a presigned URL the
// caller uploads the raw file to.
func (s *DocumentService) InitUpload(ctx context.Context, input InitUploadInput) (*InitUploadResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.InitUpload", telemetry.SpanAttributes{
		ClientID:  input.ClientID,
		Operation: "init_upload",
	})
	defer span.End()

	if s.storageClient == nil {
		return nil, domain.NewDomainError(domain.ErrCodeConfiguration, "object storage is not configured")
	}

	repos, err := s.tenants.Resolve(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	documentID := s.uuidGen.NewString()
	storageKey := buildStorageKey(input.ClientID, documentID, input.Filename)

	uploadURL, err := s.storageClient.GenerateUploadURL(ctx, storageKey, input.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          documentID,
		ClientID:    input.ClientID,
		AgentID:     input.AgentID,
		Title:       input.Title,
		ContentType: input.ContentType,
		StorageKey:  storageKey,
		Status:      domain.DocumentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}

	if err := repos.Documents().Create(ctx, doc); err != nil {
		return nil, err
	}

	return &InitUploadResult{
		DocumentID: documentID,
		StorageKey: storageKey,
		UploadURL:  uploadURL,
	}, nil
}

type CompleteUploadInput struct {
	ClientID   string
	DocumentID string
	SHA256     string
}

// CompleteUpload verifies the object landed in storage, marks the document
// uploaded and queues an embedding job.
func (s *DocumentService) CompleteUpload(ctx context.Context, input CompleteUploadInput) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.CompleteUpload", telemetry.SpanAttributes{
		ClientID:   input.ClientID,
		DocumentID: input.DocumentID,
		Operation:  "complete_upload",
	})
	defer span.End()

	repos, err := s.tenants.Resolve(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	if s.storageClient == nil {
		return nil, domain.NewDomainError(domain.ErrCodeConfiguration, "object storage is not configured")
	}

	doc, err := repos.Documents().GetByID(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}

	meta, err := s.storageClient.HeadObject(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to verify uploaded file: %w", err)
	}
	doc.SizeBytes = meta.ContentLength
	doc.SHA256 = input.SHA256

	if err := repos.Documents().UpdateStatus(ctx, doc.ID, domain.DocumentStatusUploaded); err != nil {
		return nil, err
	}
	doc.Status = domain.DocumentStatusUploaded

	job := &domain.EmbeddingJob{
		ID:         s.uuidGen.NewString(),
		ClientID:   input.ClientID,
		DocumentID: doc.ID,
		Status:     domain.EmbeddingJobStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create embedding job: %w", err)
	}

	return doc, nil
}

type CreateTextDocumentInput struct {
	ClientID string
	AgentID  string
	Title    string
	Text     string
}

// CreateText ingests an inline text document, skipping object storage, and
// queues it for embedding.
func (s *DocumentService) CreateText(ctx context.Context, input CreateTextDocumentInput) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.CreateText", telemetry.SpanAttributes{
		ClientID:  input.ClientID,
		Operation: "create_text",
	})
	defer span.End()

	if input.Text == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "document text is required")
	}

	repos, err := s.tenants.Resolve(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          s.uuidGen.NewString(),
		ClientID:    input.ClientID,
		AgentID:     input.AgentID,
		Title:       input.Title,
		ContentType: "text/plain",
		Text:        input.Text,
		SizeBytes:   int64(len(input.Text)),
		Status:      domain.DocumentStatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}

	if err := repos.Documents().Create(ctx, doc); err != nil {
		return nil, err
	}

	job := &domain.EmbeddingJob{
		ID:         s.uuidGen.NewString(),
		ClientID:   input.ClientID,
		DocumentID: doc.ID,
		Status:     domain.EmbeddingJobStatusPending,
		CreatedAt:  now,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create embedding job: %w", err)
	}

	return doc, nil
}

func (s *DocumentService) GetByID(ctx context.Context, clientID, documentID string) (*domain.Document, error) {
	repos, err := s.tenants.Resolve(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return repos.Documents().GetByID(ctx, documentID)
}

type ListDocumentsInput struct {
	ClientID string
	Cursor   string
	Limit    int
}

type ListDocumentsOutput struct {
	Items   []*domain.Document
	Cursor  string
	HasMore bool
}

func (s *DocumentService) List(ctx context.Context, input ListDocumentsInput) (*ListDocumentsOutput, error) {
	repos, err := s.tenants.Resolve(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	var cursor *pagination.Cursor
	if input.Cursor != "" {
		cursor, err = pagination.DecodeCursor(input.Cursor)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
		}
	}

	page, err := repos.Documents().List(ctx, cursor, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListDocumentsOutput{Items: page.Items, Cursor: page.NextCursor, HasMore: page.HasMore}, nil
}

// GetDownloadURL returns a presigned URL for the raw uploaded file.
func (s *DocumentService) GetDownloadURL(ctx context.Context, clientID, documentID string) (string, error) {
	repos, err := s.tenants.Resolve(ctx, clientID)
	if err != nil {
		return "", err
	}

	doc, err := repos.Documents().GetByID(ctx, documentID)
	if err != nil {
		return "", err
	}
	if doc.StorageKey == "" {
		return "", domain.NewDomainError(domain.ErrCodeInvalidOperation, "document has no stored file")
	}
	if s.storageClient == nil {
		return "", domain.NewDomainError(domain.ErrCodeConfiguration, "object storage is not configured")
	}

	url, err := s.storageClient.GenerateDownloadURL(ctx, doc.StorageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}

	return url, nil
}

// Delete removes the document row, its chunks and the stored object.
func (s *DocumentService) Delete(ctx context.Context, clientID, documentID string) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Delete", telemetry.SpanAttributes{
		ClientID:   clientID,
		DocumentID: documentID,
		Operation:  "delete",
	})
	defer span.End()

	repos, err := s.tenants.Resolve(ctx, clientID)
	if err != nil {
		return err
	}

	doc, err := repos.Documents().GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	if doc.StorageKey != "" && s.storageClient != nil {
		if err := s.storageClient.DeleteObject(ctx, doc.StorageKey); err != nil {
			return fmt.Errorf("failed to delete from storage: %w", err)
		}
	}

	if err := repos.Chunks().DeleteByDocument(ctx, documentID); err != nil {
		return err
	}

	return repos.Documents().Delete(ctx, documentID)
}

func buildStorageKey(clientID, documentID, filename string) string {
	return fmt.Sprintf("%s/%s/%s", clientID, documentID, filename)
}

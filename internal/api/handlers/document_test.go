package handlers

import (
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
	"github.com/lhyphendixon/sidekick-forge/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) InitUpload(ctx context.Context, input service.InitUploadInput) (*service.InitUploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InitUploadResult), args.Error(1)
}

func (m *MockDocumentService) CompleteUpload(ctx context.Context, input service.CompleteUploadInput) (*domain.Document, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) CreateText(ctx context.Context, input service.CreateTextDocumentInput) (*domain.Document, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) GetByID(ctx context.Context, clientID, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, clientID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListDocumentsOutput), args.Error(1)
}

func (m *MockDocumentService) GetDownloadURL(ctx context.Context, clientID, documentID string) (string, error) {
	args := m.Called(ctx, clientID, documentID)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, clientID, documentID string) error {
	args := m.Called(ctx, clientID, documentID)
	return args.Error(0)
}

func newTestDocument() *domain.Document {
	return &domain.Document{
		ID:          "doc-123",
		ClientID:    "client-456",
		Title:       "Product FAQ",
		ContentType: "application/pdf",
		StorageKey:  "client-456/doc-123/faq.pdf",
		SHA256:      "abc123hash",
		SizeBytes:   1024,
		Status:      domain.DocumentStatusUploaded,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func TestDocumentHandler_InitUpload_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("InitUpload", mock.Anything, mock.MatchedBy(func(input service.InitUploadInput) bool {
		return input.ClientID == "client-456" && input.Filename == "faq.pdf"
	})).Return(&service.InitUploadResult{
		DocumentID: "doc-123",
		StorageKey: "client-456/doc-123/faq.pdf",
		UploadURL:  "https://storage.example.com/upload",
	}, nil)

	body := `{"title":"Product FAQ","filename":"faq.pdf","content_type":"application/pdf"}`
	req := requestWithClientID(http.MethodPost, "/documents/init", []byte(body))
	w := httptest.NewRecorder()

	handler.InitUpload(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "doc-123", data["document_id"])
	assert.Equal(t, "https://storage.example.com/upload", data["upload_url"])
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_InitUpload_NoStorageConfigured(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("InitUpload", mock.Anything, mock.Anything).Return(nil,
		domain.NewDomainError(domain.ErrCodeConfiguration, "object storage is not configured"))

	body := `{"title":"Product FAQ","filename":"faq.pdf","content_type":"application/pdf"}`
	req := requestWithClientID(http.MethodPost, "/documents/init", []byte(body))
	w := httptest.NewRecorder()

	handler.InitUpload(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestDocumentHandler_CompleteUpload_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("CompleteUpload", mock.Anything, mock.MatchedBy(func(input service.CompleteUploadInput) bool {
		return input.ClientID == "client-456" && input.DocumentID == "doc-123" && input.SHA256 == "abc123hash"
	})).Return(newTestDocument(), nil)

	body := `{"document_id":"doc-123","sha256":"abc123hash"}`
	req := requestWithClientID(http.MethodPost, "/documents/complete", []byte(body))
	w := httptest.NewRecorder()

	handler.CompleteUpload(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "uploaded", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_CompleteUpload_MissingSHA256(t *testing.T) {
	handler := NewDocumentHandler(new(MockDocumentService))

	body := `{"document_id":"doc-123"}`
	req := requestWithClientID(http.MethodPost, "/documents/complete", []byte(body))
	w := httptest.NewRecorder()

	handler.CompleteUpload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "sha256 is required")
}

func TestDocumentHandler_CreateText_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	doc := newTestDocument()
	doc.ContentType = "text/plain"
	mockSvc.On("CreateText", mock.Anything, mock.MatchedBy(func(input service.CreateTextDocumentInput) bool {
		return input.ClientID == "client-456" && input.Title == "Notes" && input.Text == "inline content"
	})).Return(doc, nil)

	body := `{"title":"Notes","text":"inline content"}`
	req := requestWithClientID(http.MethodPost, "/documents", []byte(body))
	w := httptest.NewRecorder()

	handler.CreateText(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_List_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("List", mock.Anything, mock.MatchedBy(func(input service.ListDocumentsInput) bool {
		return input.ClientID == "client-456" && input.Limit == 5
	})).Return(&service.ListDocumentsOutput{
		Items:   []*domain.Document{newTestDocument()},
		Cursor:  "next-cursor",
		HasMore: true,
	}, nil)

	req := requestWithClientID(http.MethodGet, "/documents?limit=5", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["has_more"])
	assert.Equal(t, "next-cursor", data["cursor"])
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_GetDownloadURL_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("GetDownloadURL", mock.Anything, "client-456", "doc-123").Return("https://storage.example.com/download", nil)

	req := requestWithClientID(http.MethodGet, "/documents/doc-123/download", nil)
	req = withURLParam(req, "id", "doc-123")
	w := httptest.NewRecorder()

	handler.GetDownloadURL(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "https://storage.example.com/download", data["download_url"])
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Delete_NotFound(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, "client-456", "doc-missing").Return(domain.ErrDocumentNotFound)

	req := requestWithClientID(http.MethodDelete, "/documents/doc-missing", nil)
	req = withURLParam(req, "id", "doc-missing")
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

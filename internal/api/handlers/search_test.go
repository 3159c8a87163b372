package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/service"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchOutput), args.Error(1)
}

func TestSearchHandler_Search_Success(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Search", mock.Anything, mock.MatchedBy(func(input service.SearchInput) bool {
		return input.ClientID == "client-456" && input.Query == "refund policy" && input.Limit == 5
	})).Return(&service.SearchOutput{
		Results: []*service.SearchResult{
			{ID: "chunk-1", SourceID: "doc-123", SourceType: "document", Content: "Refunds within 30 days.", Score: 0.92},
		},
	}, nil)

	body := `{"query":"refund policy","limit":5}`
	req := requestWithClientID(http.MethodPost, "/search", []byte(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	results := data["results"].([]interface{})
	require.Len(t, results, 1)
	first := results[0].(map[string]interface{})
	assert.Equal(t, "doc-123", first["source_id"])
	assert.Equal(t, 0.92, first["score"])
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_Search_MissingQuery(t *testing.T) {
	handler := NewSearchHandler(new(MockSearchService))

	body := `{"limit":5}`
	req := requestWithClientID(http.MethodPost, "/search", []byte(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "query is required")
}

func TestSearchHandler_Search_EmbeddingUnavailable(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Search", mock.Anything, mock.Anything).Return(nil,
		domain.NewDomainError(domain.ErrCodeUnavailable, "embedding provider unavailable"))

	body := `{"query":"refund policy"}`
	req := requestWithClientID(http.MethodPost, "/search", []byte(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

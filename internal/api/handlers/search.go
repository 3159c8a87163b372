package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lhyphendixon/sidekick-forge/internal/api"
	"github.com/lhyphendixon/sidekick-forge/internal/api/middleware"
	"github.com/lhyphendixon/sidekick-forge/internal/service"
)

type SearchService interface {
	Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type SearchResultResponse struct {
	ID         string  `json:"id"`
	SourceID   string  `json:"source_id"`
	SourceType string  `json:"source_type"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

type SearchResponse struct {
	Results []*SearchResultResponse `json:"results"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	if clientID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	output, err := h.svc.Search(r.Context(), service.SearchInput{
		ClientID: clientID,
		Query:    req.Query,
		Limit:    req.Limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]*SearchResultResponse, len(output.Results))
	for i, res := range output.Results {
		results[i] = &SearchResultResponse{
			ID:         res.ID,
			SourceID:   res.SourceID,
			SourceType: res.SourceType,
			Content:    res.Content,
			Score:      res.Score,
		}
	}

	api.Success(w, http.StatusOK, SearchResponse{Results: results})
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/pressroom/hub/internal/api/response"
	"github.com/pressroom/hub/internal/models"
	"github.com/pressroom/hub/internal/service"
)

// SearchService defines the interface for semantic search and similar articles.
type SearchService interface {
	Search(ctx context.Context, query string, params service.SearchParams) ([]models.SearchResult, error)
	SimilarArticles(ctx context.Context, articleID uuid.UUID, params service.SearchParams) ([]models.SearchResult, error)
}

// SearchHandler handles HTTP requests for semantic article search.
type SearchHandler struct {
	service SearchService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(service SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// SearchEnvelope is the response for POST /api/articles/search. The params
// block echoes the values actually used after clamping, so clients can see
// what their inputs were normalized to.
type SearchEnvelope struct {
	Success bool                  `json:"success"`
	Query   string                `json:"query"`
	Params  service.SearchParams  `json:"params"`
	Found   int                   `json:"found"`
	Results []models.SearchResult `json:"results"`
}

// searchFailure is the body for rejected search requests.
type searchFailure struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Results []models.SearchResult `json:"results"`
}

// Search handles POST /api/articles/search.
//
// The body is parsed leniently: limit and minSimilarity of the wrong JSON type
// (e.g. a string where a number is expected) fall back to their defaults
// instead of failing the request. Only a missing or blank q is an error.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var body map[string]any

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	query := strings.TrimSpace(coerceString(body["q"]))
	if query == "" {
		response.RespondJSON(w, http.StatusBadRequest, searchFailure{
			Success: false,
			Message: "q is required and must be a non-empty string",
			Results: []models.SearchResult{},
		})

		return
	}

	params := service.NormalizeSearchParams(
		coerceInt(body["limit"]),
		coerceFloat(body["minSimilarity"]),
		coerceString(body["status"]),
	)

	results, err := h.service.Search(r.Context(), query, params)
	if err != nil {
		response.RespondInternalServerError(w, "Search failed")

		return
	}

	response.RespondJSON(w, http.StatusOK, SearchEnvelope{
		Success: true,
		Query:   query,
		Params:  params,
		Found:   len(results),
		Results: results,
	})
}

// SimilarArticles handles GET /api/articles/{id}/similar.
func (h *SearchHandler) SimilarArticles(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.RespondBadRequest(w, "Invalid article ID")

		return
	}

	params := service.NormalizeSearchParams(
		parseIntParam(r.URL.Query().Get("limit")),
		parseFloatParam(r.URL.Query().Get("minSimilarity")),
		r.URL.Query().Get("status"),
	)

	results, err := h.service.SimilarArticles(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, service.ErrEmbeddingNotFound) {
			response.RespondNotFound(w, "Article has no embedding yet")

			return
		}

		response.RespondInternalServerError(w, "Similar articles failed")

		return
	}

	response.RespondJSON(w, http.StatusOK, SearchEnvelope{
		Success: true,
		Params:  params,
		Found:   len(results),
		Results: results,
	})
}

// coerceInt returns the value as an int when it is a JSON number, nil otherwise.
func coerceInt(v any) *int {
	f, ok := v.(float64)
	if !ok {
		return nil
	}

	n := int(f)

	return &n
}

// coerceFloat returns the value as a float64 when it is a JSON number, nil otherwise.
func coerceFloat(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}

	return &f
}

// coerceString returns the value as a string when it is one, "" otherwise.
func coerceString(v any) string {
	s, _ := v.(string)

	return s
}

// parseIntParam parses a query param as an int; nil when absent or malformed.
func parseIntParam(s string) *int {
	if s == "" {
		return nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}

	return &n
}

// parseFloatParam parses a query param as a float; nil when absent or malformed.
func parseFloatParam(s string) *float64 {
	if s == "" {
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	return &f
}

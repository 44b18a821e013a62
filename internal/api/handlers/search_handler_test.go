package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom/hub/internal/models"
	"github.com/pressroom/hub/internal/repository"
	"github.com/pressroom/hub/internal/service"
)

type mockSearchService struct {
	searchFunc  func(ctx context.Context, query string, params service.SearchParams) ([]models.SearchResult, error)
	similarFunc func(ctx context.Context, articleID uuid.UUID, params service.SearchParams) ([]models.SearchResult, error)
}

func (m *mockSearchService) Search(
	ctx context.Context, query string, params service.SearchParams,
) ([]models.SearchResult, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, params)
	}

	return []models.SearchResult{}, nil
}

func (m *mockSearchService) SimilarArticles(
	ctx context.Context, articleID uuid.UUID, params service.SearchParams,
) ([]models.SearchResult, error) {
	if m.similarFunc != nil {
		return m.similarFunc(ctx, articleID, params)
	}

	return []models.SearchResult{}, nil
}

func postSearch(t *testing.T, handler *SearchHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "http://test/api/articles/search", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	return rec
}

func TestSearchHandler_Search(t *testing.T) {
	t.Run("missing q returns 400 with failure envelope", func(t *testing.T) {
		handler := NewSearchHandler(&mockSearchService{})

		rec := postSearch(t, handler, `{"limit":5}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp searchFailure
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Message)
	})

	t.Run("whitespace-only q returns 400 with failure envelope", func(t *testing.T) {
		mock := &mockSearchService{
			searchFunc: func(context.Context, string, service.SearchParams) ([]models.SearchResult, error) {
				t.Fatal("search should not run for a blank query")

				return nil, nil
			},
		}
		handler := NewSearchHandler(mock)

		rec := postSearch(t, handler, `{"q":"   "}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp searchFailure
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Message)
		assert.NotNil(t, resp.Results)
		assert.Empty(t, resp.Results)
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		handler := NewSearchHandler(&mockSearchService{})

		rec := postSearch(t, handler, `{"q":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success returns the envelope with clamped params", func(t *testing.T) {
		id := uuid.New()
		mock := &mockSearchService{
			searchFunc: func(_ context.Context, query string, params service.SearchParams) ([]models.SearchResult, error) {
				assert.Equal(t, "deployment tips", query)
				assert.Equal(t, service.MaxSearchLimit, params.Limit)

				return []models.SearchResult{
					{ArticleID: id, Title: "Blue-green deploys", ContentPreview: "Keep two environments…", Similarity: 0.88},
				}, nil
			},
		}
		handler := NewSearchHandler(mock)

		rec := postSearch(t, handler, `{"q":"deployment tips","limit":500}`)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp SearchEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "deployment tips", resp.Query)
		assert.Equal(t, service.MaxSearchLimit, resp.Params.Limit)
		assert.Equal(t, 1, resp.Found)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, id, resp.Results[0].ArticleID)
	})

	t.Run("wrong-typed limit and minSimilarity fall back to defaults", func(t *testing.T) {
		var gotParams service.SearchParams

		mock := &mockSearchService{
			searchFunc: func(_ context.Context, _ string, params service.SearchParams) ([]models.SearchResult, error) {
				gotParams = params

				return []models.SearchResult{}, nil
			},
		}
		handler := NewSearchHandler(mock)

		rec := postSearch(t, handler, `{"q":"golang","limit":"ten","minSimilarity":"high"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, service.DefaultSearchLimit, gotParams.Limit)
		assert.InDelta(t, service.DefaultMinSimilarity, gotParams.MinSimilarity, 1e-9)
		assert.Equal(t, models.StatusPublished, gotParams.Status)
	})
}

func TestSearchHandler_SimilarArticles(t *testing.T) {
	t.Run("invalid id returns 400", func(t *testing.T) {
		handler := NewSearchHandler(&mockSearchService{})

		req := httptest.NewRequest(http.MethodGet, "http://test/api/articles/not-a-uuid/similar", nil)
		req.SetPathValue("id", "not-a-uuid")

		rec := httptest.NewRecorder()
		handler.SimilarArticles(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing embedding returns 404", func(t *testing.T) {
		mock := &mockSearchService{
			similarFunc: func(context.Context, uuid.UUID, service.SearchParams) ([]models.SearchResult, error) {
				return nil, repository.ErrEmbeddingNotFound
			},
		}
		handler := NewSearchHandler(mock)

		id := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "http://test/api/articles/"+id.String()+"/similar", nil)
		req.SetPathValue("id", id.String())

		rec := httptest.NewRecorder()
		handler.SimilarArticles(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("query params feed the normalized search params", func(t *testing.T) {
		var gotParams service.SearchParams

		mock := &mockSearchService{
			similarFunc: func(_ context.Context, _ uuid.UUID, params service.SearchParams) ([]models.SearchResult, error) {
				gotParams = params

				return []models.SearchResult{}, nil
			},
		}
		handler := NewSearchHandler(mock)

		id := uuid.New()
		req := httptest.NewRequest(http.MethodGet,
			"http://test/api/articles/"+id.String()+"/similar?limit=3&minSimilarity=0.9", nil)
		req.SetPathValue("id", id.String())

		rec := httptest.NewRecorder()
		handler.SimilarArticles(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 3, gotParams.Limit)
		assert.InDelta(t, 0.9, gotParams.MinSimilarity, 1e-9)
	})
}

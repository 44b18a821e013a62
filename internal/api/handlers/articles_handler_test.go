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
)

type mockArticlesService struct {
	createFunc func(ctx context.Context, req *models.CreateArticleRequest) (*models.Article, error)
	getFunc    func(ctx context.Context, id uuid.UUID) (*models.Article, error)
	viewFunc   func(ctx context.Context, id uuid.UUID) error
}

func (m *mockArticlesService) Create(ctx context.Context, req *models.CreateArticleRequest) (*models.Article, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}

	return &models.Article{ID: uuid.New(), Title: req.Title, Content: req.Content, Status: models.StatusDraft}, nil
}

func (m *mockArticlesService) Get(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}

	return &models.Article{ID: id}, nil
}

func (m *mockArticlesService) List(context.Context, *models.ArticleStatus, int, int) ([]models.Article, error) {
	return nil, nil
}

func (m *mockArticlesService) ListByAuthor(context.Context, uuid.UUID, int, int) ([]models.Article, error) {
	return nil, nil
}

func (m *mockArticlesService) Update(_ context.Context, id uuid.UUID, _ *models.UpdateArticleRequest) (*models.Article, error) {
	return &models.Article{ID: id}, nil
}

func (m *mockArticlesService) Delete(context.Context, uuid.UUID) error { return nil }

func (m *mockArticlesService) RecordView(ctx context.Context, id uuid.UUID) error {
	if m.viewFunc != nil {
		return m.viewFunc(ctx, id)
	}

	return nil
}

func TestArticlesHandler_Create(t *testing.T) {
	t.Run("missing title fails validation", func(t *testing.T) {
		handler := NewArticlesHandler(&mockArticlesService{})

		body := []byte(`{"content":"text","author_id":"` + uuid.New().String() + `"}`)
		req := httptest.NewRequest(http.MethodPost, "http://test/api/articles", bytes.NewReader(body))

		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	})

	t.Run("valid payload returns 201 with the stored article", func(t *testing.T) {
		authorID := uuid.New()
		mock := &mockArticlesService{
			createFunc: func(_ context.Context, req *models.CreateArticleRequest) (*models.Article, error) {
				assert.Equal(t, "Hello", req.Title)
				assert.Equal(t, authorID, req.AuthorID)

				return &models.Article{ID: uuid.New(), Title: req.Title, Status: models.StatusPublished}, nil
			},
		}
		handler := NewArticlesHandler(mock)

		body := []byte(`{"title":"Hello","content":"World","author_id":"` + authorID.String() + `"}`)
		req := httptest.NewRequest(http.MethodPost, "http://test/api/articles", bytes.NewReader(body))

		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var article models.Article
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &article))
		assert.Equal(t, models.StatusPublished, article.Status)
	})
}

func TestArticlesHandler_Get(t *testing.T) {
	t.Run("invalid id returns 400", func(t *testing.T) {
		handler := NewArticlesHandler(&mockArticlesService{})

		req := httptest.NewRequest(http.MethodGet, "http://test/api/articles/nope", nil)
		req.SetPathValue("id", "nope")

		rec := httptest.NewRecorder()
		handler.Get(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		mock := &mockArticlesService{
			getFunc: func(context.Context, uuid.UUID) (*models.Article, error) {
				return nil, repository.ErrArticleNotFound
			},
		}
		handler := NewArticlesHandler(mock)

		id := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "http://test/api/articles/"+id.String(), nil)
		req.SetPathValue("id", id.String())

		rec := httptest.NewRecorder()
		handler.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestArticlesHandler_RecordView(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		handler := NewArticlesHandler(&mockArticlesService{})

		id := uuid.New()
		req := httptest.NewRequest(http.MethodPost, "http://test/api/articles/"+id.String()+"/view", nil)
		req.SetPathValue("id", id.String())

		rec := httptest.NewRecorder()
		handler.RecordView(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		mock := &mockArticlesService{
			viewFunc: func(context.Context, uuid.UUID) error {
				return repository.ErrArticleNotFound
			},
		}
		handler := NewArticlesHandler(mock)

		id := uuid.New()
		req := httptest.NewRequest(http.MethodPost, "http://test/api/articles/"+id.String()+"/view", nil)
		req.SetPathValue("id", id.String())

		rec := httptest.NewRecorder()
		handler.RecordView(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// Package handlers implements the HTTP handlers for the articles API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/pressroom/hub/internal/api/response"
	"github.com/pressroom/hub/internal/api/validation"
	"github.com/pressroom/hub/internal/models"
	"github.com/pressroom/hub/internal/repository"
)

// ArticlesService defines the article lifecycle operations the handler needs.
type ArticlesService interface {
	Create(ctx context.Context, req *models.CreateArticleRequest) (*models.Article, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Article, error)
	List(ctx context.Context, status *models.ArticleStatus, limit, offset int) ([]models.Article, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]models.Article, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateArticleRequest) (*models.Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RecordView(ctx context.Context, id uuid.UUID) error
}

// ArticlesHandler handles HTTP requests for article CRUD and view counting.
type ArticlesHandler struct {
	service ArticlesService
}

// NewArticlesHandler creates a new articles handler.
func NewArticlesHandler(service ArticlesService) *ArticlesHandler {
	return &ArticlesHandler{service: service}
}

const defaultListLimit = 20

// Create handles POST /api/articles. Moderation runs on this path: the
// response carries the post-moderation status, which may differ from the
// requested one.
func (h *ArticlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateArticleRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)

		return
	}

	article, err := h.service.Create(r.Context(), &req)
	if err != nil {
		response.RespondInternalServerError(w, "Failed to create article")

		return
	}

	response.RespondJSON(w, http.StatusCreated, article)
}

// Get handles GET /api/articles/{id}.
func (h *ArticlesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}

	article, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			response.RespondNotFound(w, "Article not found")

			return
		}

		response.RespondInternalServerError(w, "Failed to load article")

		return
	}

	response.RespondJSON(w, http.StatusOK, article)
}

// listArticlesQuery are the query parameters for GET /api/articles.
type listArticlesQuery struct {
	Limit    int    `form:"limit" validate:"omitempty,gte=1,lte=100"`
	Offset   int    `form:"offset" validate:"omitempty,gte=0"`
	Status   string `form:"status" validate:"omitempty,article_status"`
	AuthorID string `form:"author_id" validate:"omitempty,uuid"`
}

// List handles GET /api/articles.
func (h *ArticlesHandler) List(w http.ResponseWriter, r *http.Request) {
	var q listArticlesQuery

	if err := validation.ValidateAndDecodeQueryParams(r, &q); err != nil {
		validation.RespondValidationError(w, err)

		return
	}

	if q.Limit == 0 {
		q.Limit = defaultListLimit
	}

	if q.AuthorID != "" {
		authorID, err := uuid.Parse(q.AuthorID)
		if err != nil {
			response.RespondBadRequest(w, "Invalid author ID")

			return
		}

		articles, err := h.service.ListByAuthor(r.Context(), authorID, q.Limit, q.Offset)
		if err != nil {
			response.RespondInternalServerError(w, "Failed to list articles")

			return
		}

		if articles == nil {
			articles = []models.Article{}
		}

		response.RespondJSON(w, http.StatusOK, articles)

		return
	}

	var status *models.ArticleStatus

	if q.Status != "" {
		parsed, _ := models.ParseArticleStatus(q.Status, "")
		status = &parsed
	}

	articles, err := h.service.List(r.Context(), status, q.Limit, q.Offset)
	if err != nil {
		response.RespondInternalServerError(w, "Failed to list articles")

		return
	}

	if articles == nil {
		articles = []models.Article{}
	}

	response.RespondJSON(w, http.StatusOK, articles)
}

// Update handles PATCH /api/articles/{id}.
func (h *ArticlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}

	var req models.UpdateArticleRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)

		return
	}

	article, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			response.RespondNotFound(w, "Article not found")

			return
		}

		response.RespondInternalServerError(w, "Failed to update article")

		return
	}

	response.RespondJSON(w, http.StatusOK, article)
}

// Delete handles DELETE /api/articles/{id}.
func (h *ArticlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			response.RespondNotFound(w, "Article not found")

			return
		}

		response.RespondInternalServerError(w, "Failed to delete article")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecordView handles POST /api/articles/{id}/view.
func (h *ArticlesHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}

	if err := h.service.RecordView(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			response.RespondNotFound(w, "Article not found")

			return
		}

		response.RespondInternalServerError(w, "Failed to record view")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// articleID parses the {id} path value, writing a 400 response on failure.
func articleID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.RespondBadRequest(w, "Invalid article ID")

		return uuid.Nil, false
	}

	return id, true
}

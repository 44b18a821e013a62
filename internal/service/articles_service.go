package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/pressroom/hub/internal/models"
)

// ArticlesStore is the persistence surface the articles service needs.
type ArticlesStore interface {
	Create(ctx context.Context, req *models.CreateArticleRequest, status models.ArticleStatus) (*models.Article, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	List(ctx context.Context, status *models.ArticleStatus, limit, offset int) ([]models.Article, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]models.Article, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateArticleRequest, status *models.ArticleStatus) (*models.Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

// articleModerator gates publication state at creation time.
type articleModerator interface {
	ModerateArticle(ctx context.Context, article *models.Article) error
}

// ArticlesService orchestrates the article lifecycle: creation with a
// synchronous moderation gate, edits, and asynchronous (re)embedding of
// content-relevant changes.
type ArticlesService struct {
	store       ArticlesStore
	moderation  articleModerator
	inserter    ArticleEmbeddingInserter
	queueName   string
	maxAttempts int
	logger      *slog.Logger
}

// NewArticlesService creates an ArticlesService. moderation may be nil
// (moderation disabled: articles keep their requested status). The embedding
// inserter is set later via SetEmbeddingInserter because the job client is
// built after the services it dispatches to.
func NewArticlesService(
	store ArticlesStore, moderation articleModerator, queueName string, maxAttempts int, logger *slog.Logger,
) *ArticlesService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ArticlesService{
		store:       store,
		moderation:  moderation,
		queueName:   queueName,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// SetEmbeddingInserter wires the job client used to enqueue embedding work.
// Must be called during startup, before the service handles requests.
func (s *ArticlesService) SetEmbeddingInserter(inserter ArticleEmbeddingInserter) {
	s.inserter = inserter
}

// Create persists a new article, runs the moderation gate when both title and
// content are non-empty, and enqueues embedding generation. Moderation is on
// the synchronous path: the returned article carries the post-moderation
// status. Embedding is not: the job is fire-and-forget and its failure never
// surfaces here.
func (s *ArticlesService) Create(ctx context.Context, req *models.CreateArticleRequest) (*models.Article, error) {
	status, ok := models.ParseArticleStatus(req.Status, models.StatusDraft)
	if req.Status != "" && !ok {
		s.logger.Warn("create: unrecognized status, falling back to draft", "status", req.Status)
	}

	article, err := s.store.Create(ctx, req, status)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	if s.moderation != nil &&
		strings.TrimSpace(article.Title) != "" && strings.TrimSpace(article.Content) != "" {
		if err := s.moderation.ModerateArticle(ctx, article); err != nil {
			return nil, fmt.Errorf("moderate article: %w", err)
		}
	}

	s.enqueueEmbedding(ctx, article.ID)

	return article, nil
}

// Update applies the edit and re-embeds when a content-relevant field changed.
// An unrecognized status in the payload is ignored with a warning rather than
// rejected. Edits do not re-run moderation.
func (s *ArticlesService) Update(ctx context.Context, id uuid.UUID, req *models.UpdateArticleRequest) (*models.Article, error) {
	var status *models.ArticleStatus

	if req.Status != nil {
		parsed, ok := models.ParseArticleStatus(*req.Status, "")
		if ok {
			status = &parsed
		} else {
			s.logger.Warn("update: unrecognized status ignored", "article_id", id, "status", *req.Status)
		}
	}

	article, err := s.store.Update(ctx, id, req, status)
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}

	if req.SignificantChange() {
		s.enqueueEmbedding(ctx, id)
	}

	return article, nil
}

// Get returns one article.
func (s *ArticlesService) Get(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	return s.store.GetByID(ctx, id)
}

// List returns articles ordered by creation time descending. status is an
// optional filter.
func (s *ArticlesService) List(ctx context.Context, status *models.ArticleStatus, limit, offset int) ([]models.Article, error) {
	return s.store.List(ctx, status, limit, offset)
}

// ListByAuthor returns one author's articles, newest first.
func (s *ArticlesService) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]models.Article, error) {
	return s.store.ListByAuthor(ctx, authorID, limit, offset)
}

// Delete removes an article.
func (s *ArticlesService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// RecordView bumps the view counter.
func (s *ArticlesService) RecordView(ctx context.Context, id uuid.UUID) error {
	return s.store.IncrementViews(ctx, id)
}

// enqueueEmbedding hands the article off to the embedding queue, at-most-once
// and best-effort: enqueue failures are logged centrally and never reach the
// triggering call's error channel.
func (s *ArticlesService) enqueueEmbedding(ctx context.Context, articleID uuid.UUID) {
	if s.inserter == nil {
		s.logger.Debug("embedding: no inserter configured, skipping", "article_id", articleID)

		return
	}

	opts := &river.InsertOpts{
		Queue:       s.queueName,
		MaxAttempts: s.maxAttempts,
		UniqueOpts:  river.UniqueOpts{ByArgs: true},
	}

	_, err := s.inserter.Insert(ctx, ArticleEmbeddingArgs{ArticleID: articleID}, opts)
	if err != nil {
		s.logger.Error("embedding: enqueue failed", "article_id", articleID, "error", err)

		return
	}

	s.logger.Info("embedding: job enqueued", "article_id", articleID)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/pressroom/hub/internal/models"
	"github.com/pressroom/hub/internal/repository"
)

// Search parameter bounds. Out-of-range or missing values are clamped or
// defaulted, never rejected.
const (
	DefaultSearchLimit = 10
	MinSearchLimit     = 1
	MaxSearchLimit     = 50

	DefaultMinSimilarity = 0.72
	MinMinSimilarity     = 0.10
	MaxMinSimilarity     = 0.98
)

// ErrEmbeddingNotFound is re-exported so handlers can map it to 404.
var ErrEmbeddingNotFound = repository.ErrEmbeddingNotFound

// SearchParams are the normalized similarity-search parameters.
type SearchParams struct {
	Limit         int                  `json:"limit"`
	MinSimilarity float64              `json:"minSimilarity"`
	Status        models.ArticleStatus `json:"status"`
}

// NormalizeSearchParams clamps limit to [1,50] (default 10), minSimilarity to
// [0.10,0.98] (default 0.72; pass NaN or a negative sentinel via hasMin=false
// for default) and falls back to published for unrecognized statuses.
func NormalizeSearchParams(limit *int, minSimilarity *float64, status string) SearchParams {
	p := SearchParams{
		Limit:         DefaultSearchLimit,
		MinSimilarity: DefaultMinSimilarity,
		Status:        models.StatusPublished,
	}

	if limit != nil {
		p.Limit = *limit
	}

	if p.Limit < MinSearchLimit {
		p.Limit = MinSearchLimit
	} else if p.Limit > MaxSearchLimit {
		p.Limit = MaxSearchLimit
	}

	if minSimilarity != nil {
		p.MinSimilarity = *minSimilarity
	}

	if p.MinSimilarity < MinMinSimilarity {
		p.MinSimilarity = MinMinSimilarity
	} else if p.MinSimilarity > MaxMinSimilarity {
		p.MinSimilarity = MaxMinSimilarity
	}

	p.Status, _ = models.ParseArticleStatus(strings.ToLower(strings.TrimSpace(status)), models.StatusPublished)

	return p
}

// EmbeddingsRepoForSearch provides the vector-store reads needed for search.
type EmbeddingsRepoForSearch interface {
	NearestArticles(ctx context.Context, queryVec []float32, status models.ArticleStatus, minSimilarity float64, limit int) ([]models.SearchResult, error)
	GetArticleEmbedding(ctx context.Context, articleID uuid.UUID) ([]float32, error)
	SimilarArticles(ctx context.Context, articleID uuid.UUID, queryVec []float32, status models.ArticleStatus, minSimilarity float64, limit int) ([]models.SearchResult, error)
}

// SearchService turns a user query into a ranked list of articles above a
// similarity threshold.
//
// Failure policy: a query embedding that cannot be generated degrades to an
// empty result set (provider outages must not surface as search errors); store
// failures propagate, since they indicate a data or schema bug.
type SearchService struct {
	embeddingClient EmbeddingClient
	embeddingsRepo  EmbeddingsRepoForSearch
	queryCache      *lru.Cache[string, []float32]
	queryLoadGroup  singleflight.Group
	logger          *slog.Logger
}

// SearchServiceParams configures SearchService. QueryCache may be nil (no caching).
type SearchServiceParams struct {
	EmbeddingClient EmbeddingClient
	EmbeddingsRepo  EmbeddingsRepoForSearch
	QueryCache      *lru.Cache[string, []float32]
	Logger          *slog.Logger
}

// NewSearchService creates a SearchService.
func NewSearchService(p SearchServiceParams) *SearchService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SearchService{
		embeddingClient: p.EmbeddingClient,
		embeddingsRepo:  p.EmbeddingsRepo,
		queryCache:      p.QueryCache,
		logger:          logger,
	}
}

// Search returns ranked results for the given query. Empty or whitespace-only
// queries return an empty result set without calling the provider. Results are
// ordered by similarity descending; ties keep the store's natural order (an
// accepted non-determinism for equal scores).
func (s *SearchService) Search(ctx context.Context, query string, params SearchParams) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.SearchResult{}, nil
	}

	embedding, err := s.queryEmbedding(ctx, query)
	if err != nil {
		s.logger.Warn("search: query embedding unavailable", "error", err)

		return []models.SearchResult{}, nil
	}

	results, err := s.embeddingsRepo.NearestArticles(ctx, embedding, params.Status, params.MinSimilarity, params.Limit)
	if err != nil {
		s.logger.Error("search: nearest articles failed", "error", err)

		return nil, fmt.Errorf("nearest articles: %w", err)
	}

	if results == nil {
		results = []models.SearchResult{}
	}

	return results, nil
}

// SimilarArticles returns published (or params.Status) articles nearest to the
// given article's stored embedding, excluding the article itself. Returns
// ErrEmbeddingNotFound when the article has no embedding yet.
func (s *SearchService) SimilarArticles(ctx context.Context, articleID uuid.UUID, params SearchParams) ([]models.SearchResult, error) {
	embedding, err := s.embeddingsRepo.GetArticleEmbedding(ctx, articleID)
	if err != nil {
		if errors.Is(err, repository.ErrEmbeddingNotFound) {
			return nil, err
		}

		s.logger.Error("similar articles: get embedding failed", "error", err, "article_id", articleID)

		return nil, fmt.Errorf("get embedding: %w", err)
	}

	results, err := s.embeddingsRepo.SimilarArticles(ctx, articleID, embedding, params.Status, params.MinSimilarity, params.Limit)
	if err != nil {
		s.logger.Error("similar articles: nearest failed", "error", err, "article_id", articleID)

		return nil, fmt.Errorf("similar articles: %w", err)
	}

	if results == nil {
		results = []models.SearchResult{}
	}

	return results, nil
}

func (s *SearchService) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if s.queryCache == nil {
		return s.embeddingClient.CreateEmbedding(ctx, query)
	}

	if vec, ok := s.queryCache.Get(query); ok {
		return vec, nil
	}

	val, err, _ := s.queryLoadGroup.Do(query, func() (any, error) {
		vec, loadErr := s.embeddingClient.CreateEmbedding(ctx, query)
		if loadErr != nil {
			return nil, fmt.Errorf("create embedding: %w", loadErr)
		}

		s.queryCache.Add(query, vec)

		return vec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	return val.([]float32), nil
}

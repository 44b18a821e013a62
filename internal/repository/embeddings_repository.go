// Package repository provides data access for articles, embeddings, users and notifications.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/pressroom/hub/internal/apperrors"
	"github.com/pressroom/hub/internal/models"
)

// ErrEmbeddingNotFound is returned when an article has no stored embedding.
var ErrEmbeddingNotFound = apperrors.NewNotFoundError("embedding", "article has no embedding")

// EmbeddingsRepository handles the embedding_vector column on articles and the
// nearest-neighbor queries over it.
type EmbeddingsRepository struct {
	db *pgxpool.Pool
}

// NewEmbeddingsRepository creates a new embeddings repository.
func NewEmbeddingsRepository(db *pgxpool.Pool) *EmbeddingsRepository {
	return &EmbeddingsRepository{db: db}
}

// FormatVector renders vec as a pgvector literal: "[v1, v2, ...]" with each
// component fixed to 8 decimal places. The literal is cast with ::vector in
// SQL so malformed values fail loudly at the store.
func FormatVector(vec []float32) string {
	var b strings.Builder
	b.Grow(len(vec) * 12)
	b.WriteByte('[')

	for i, v := range vec {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(strconv.FormatFloat(float64(v), 'f', 8, 32))
	}

	b.WriteByte(']')

	return b.String()
}

// UpsertArticleEmbedding overwrites the stored vector for an article. A valid
// write never fails silently; errors propagate to the caller.
func (r *EmbeddingsRepository) UpsertArticleEmbedding(ctx context.Context, articleID uuid.UUID, vec []float32) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE articles SET embedding_vector = $1::vector, updated_at = now() WHERE id = $2`,
		FormatVector(vec), articleID,
	)
	if err != nil {
		return fmt.Errorf("embedding upsert: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	return nil
}

// searchPreviewChars is the content preview budget for search results.
const searchPreviewChars = 280

// NearestArticles returns articles whose stored embedding is present, whose
// status matches exactly, and whose cosine similarity to queryVec is at least
// minSimilarity, ordered by similarity descending and capped at limit.
// Similarity (1 - cosine distance) is computed by the store itself; ordering by
// the raw distance operator lets an ANN index serve the top-K scan. Ties on
// similarity keep the store's natural return order.
func (r *EmbeddingsRepository) NearestArticles(
	ctx context.Context, queryVec []float32, status models.ArticleStatus, minSimilarity float64, limit int,
) ([]models.SearchResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			id,
			title,
			LEFT(content, $5) AS content_preview,
			length(content) > $5 AS truncated,
			ROUND(CAST((1 - (embedding_vector <=> $1::vector)) AS numeric), 4) AS similarity
		FROM articles
		WHERE embedding_vector IS NOT NULL
		  AND status = $2
		  AND (embedding_vector <=> $1::vector) <= (1 - $3::numeric)
		ORDER BY embedding_vector <=> $1::vector
		LIMIT $4`,
		FormatVector(queryVec), status, minSimilarity, limit, searchPreviewChars,
	)
	if err != nil {
		return nil, fmt.Errorf("nearest articles: %w", err)
	}
	defer rows.Close()

	return scanSearchResults(rows)
}

func scanSearchResults(rows pgx.Rows) ([]models.SearchResult, error) {
	var results []models.SearchResult

	for rows.Next() {
		var (
			row       models.SearchResult
			truncated bool
		)

		if err := rows.Scan(&row.ArticleID, &row.Title, &row.ContentPreview, &truncated, &row.Similarity); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}

		if truncated {
			row.ContentPreview += "…"
		}

		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nearest: %w", err)
	}

	return results, nil
}

// GetArticleEmbedding returns the stored vector for an article.
// Returns ErrEmbeddingNotFound when the article is absent or not yet embedded.
func (r *EmbeddingsRepository) GetArticleEmbedding(ctx context.Context, articleID uuid.UUID) ([]float32, error) {
	var vec pgvector.Vector

	err := r.db.QueryRow(ctx,
		`SELECT embedding_vector FROM articles WHERE id = $1 AND embedding_vector IS NOT NULL`,
		articleID,
	).Scan(&vec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmbeddingNotFound
		}

		return nil, fmt.Errorf("get embedding: %w", err)
	}

	return vec.Slice(), nil
}

// SimilarArticles returns the nearest neighbors to the given article's stored
// vector, excluding the article itself. Same filtering and ordering rules as
// NearestArticles.
func (r *EmbeddingsRepository) SimilarArticles(
	ctx context.Context, articleID uuid.UUID, queryVec []float32, status models.ArticleStatus, minSimilarity float64, limit int,
) ([]models.SearchResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			id,
			title,
			LEFT(content, $6) AS content_preview,
			length(content) > $6 AS truncated,
			ROUND(CAST((1 - (embedding_vector <=> $1::vector)) AS numeric), 4) AS similarity
		FROM articles
		WHERE embedding_vector IS NOT NULL
		  AND id != $5
		  AND status = $2
		  AND (embedding_vector <=> $1::vector) <= (1 - $3::numeric)
		ORDER BY embedding_vector <=> $1::vector
		LIMIT $4`,
		FormatVector(queryVec), status, minSimilarity, limit, articleID, searchPreviewChars,
	)
	if err != nil {
		return nil, fmt.Errorf("similar articles: %w", err)
	}
	defer rows.Close()

	return scanSearchResults(rows)
}

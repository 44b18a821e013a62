package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pressroom/hub/internal/apperrors"
	"github.com/pressroom/hub/internal/models"
)

// ErrArticleNotFound is returned when no article row exists for the given id.
var ErrArticleNotFound = apperrors.NewNotFoundError("article", "article not found")

// ArticlesRepository handles data access for the articles table.
type ArticlesRepository struct {
	db *pgxpool.Pool
}

// NewArticlesRepository creates a new articles repository.
func NewArticlesRepository(db *pgxpool.Pool) *ArticlesRepository {
	return &ArticlesRepository{db: db}
}

const articleColumns = `
	a.id, a.title, a.content, a.status, a.author_id, a.category_id,
	a.views_count, a.rejection_reason,
	a.moderation_flagged, a.moderation_score, a.moderation_categories,
	a.moderation_reason, a.moderation_confidence, a.moderation_model, a.moderated_at,
	a.embedding_vector IS NOT NULL,
	a.created_at, a.updated_at`

// scanArticle reads one article row including the optional moderation snapshot.
func scanArticle(row pgx.Row) (*models.Article, error) {
	var (
		a           models.Article
		flagged     *bool
		score       *float64
		categories  []string
		reason      *string
		confidence  *float64
		model       *string
		moderatedAt *time.Time
		moderated   *models.ModerationResult
	)

	err := row.Scan(
		&a.ID, &a.Title, &a.Content, &a.Status, &a.AuthorID, &a.CategoryID,
		&a.ViewsCount, &a.RejectionReason,
		&flagged, &score, &categories,
		&reason, &confidence, &model, &moderatedAt,
		&a.HasEmbedding,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrArticleNotFound
		}

		return nil, fmt.Errorf("scan article: %w", err)
	}

	if flagged != nil && score != nil && confidence != nil && model != nil && moderatedAt != nil {
		moderated = &models.ModerationResult{
			Flagged:     *flagged,
			Score:       *score,
			Reason:      reason,
			Confidence:  *confidence,
			Model:       *model,
			ModeratedAt: *moderatedAt,
		}
		for _, c := range categories {
			moderated.Categories = append(moderated.Categories, models.ModerationCategory(c))
		}
	}

	a.Moderation = moderated

	return &a, nil
}

// Create inserts a new article and its tag associations in one transaction.
func (r *ArticlesRepository) Create(ctx context.Context, req *models.CreateArticleRequest, status models.ArticleStatus) (*models.Article, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create article: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var id uuid.UUID

	err = tx.QueryRow(ctx, `
		INSERT INTO articles (title, content, status, author_id, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		req.Title, req.Content, status, req.AuthorID, req.CategoryID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}

	for _, tagID := range req.TagIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			id, tagID,
		); err != nil {
			return nil, fmt.Errorf("insert article tag: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create article: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID returns one article with its tag ids, or ErrArticleNotFound.
func (r *ArticlesRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	article, err := scanArticle(r.db.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles a WHERE a.id = $1`, id))
	if err != nil {
		return nil, err
	}

	tagIDs, err := r.tagIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	article.TagIDs = tagIDs

	return article, nil
}

func (r *ArticlesRepository) tagIDs(ctx context.Context, articleID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT tag_id FROM article_tags WHERE article_id = $1 ORDER BY tag_id`, articleID)
	if err != nil {
		return nil, fmt.Errorf("list article tags: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tag id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return ids, nil
}

// List returns articles ordered by creation time descending, optionally
// filtered by status.
func (r *ArticlesRepository) List(ctx context.Context, status *models.ArticleStatus, limit, offset int) ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles a`
	args := []any{limit, offset}

	if status != nil {
		query += ` WHERE a.status = $3`
		args = append(args, *status)
	}

	query += ` ORDER BY a.created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// ListByAuthor returns one author's articles, newest first.
func (r *ArticlesRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]models.Article, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+articleColumns+` FROM articles a WHERE a.author_id = $1 ORDER BY a.created_at DESC LIMIT $2 OFFSET $3`,
		authorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list articles by author: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

func collectArticles(rows pgx.Rows) ([]models.Article, error) {
	var articles []models.Article

	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}

		articles = append(articles, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}

	return articles, nil
}

// Update applies the non-nil fields of req and replaces tag associations when
// req.TagIDs is non-nil. Status is applied as given; validation happens in the service.
func (r *ArticlesRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateArticleRequest, status *models.ArticleStatus) (*models.Article, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update article: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	tag, err := tx.Exec(ctx, `
		UPDATE articles SET
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			status = COALESCE($4, status),
			category_id = COALESCE($5, category_id),
			updated_at = now()
		WHERE id = $1`,
		id, req.Title, req.Content, status, req.CategoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return nil, ErrArticleNotFound
	}

	if req.TagIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM article_tags WHERE article_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear article tags: %w", err)
		}

		for _, tagID := range req.TagIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				id, tagID,
			); err != nil {
				return nil, fmt.Errorf("insert article tag: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update article: %w", err)
	}

	return r.GetByID(ctx, id)
}

// UpdateStatus sets the publication status and, for rejections, the rejection reason.
func (r *ArticlesRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ArticleStatus, rejectionReason *string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE articles SET status = $2, rejection_reason = $3, updated_at = now() WHERE id = $1`,
		id, status, rejectionReason,
	)
	if err != nil {
		return fmt.Errorf("update article status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	return nil
}

// SetModerationResult overwrites the moderation snapshot on the article.
func (r *ArticlesRepository) SetModerationResult(ctx context.Context, id uuid.UUID, result *models.ModerationResult) error {
	categories := make([]string, len(result.Categories))
	for i, c := range result.Categories {
		categories[i] = string(c)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE articles SET
			moderation_flagged = $2,
			moderation_score = $3,
			moderation_categories = $4,
			moderation_reason = $5,
			moderation_confidence = $6,
			moderation_model = $7,
			moderated_at = $8,
			updated_at = now()
		WHERE id = $1`,
		id, result.Flagged, result.Score, categories,
		result.Reason, result.Confidence, result.Model, result.ModeratedAt,
	)
	if err != nil {
		return fmt.Errorf("set moderation result: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	return nil
}

// Delete removes the article. Tag associations cascade at the schema level.
func (r *ArticlesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	return nil
}

// IncrementViews bumps the article's view counter.
func (r *ArticlesRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE articles SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	return nil
}

// GetEmbeddingSource returns the content-relevant projection used to build the
// embedding text: title, content, category name and tag names.
func (r *ArticlesRepository) GetEmbeddingSource(ctx context.Context, id uuid.UUID) (*models.EmbeddingSource, error) {
	src := models.EmbeddingSource{ArticleID: id}

	err := r.db.QueryRow(ctx, `
		SELECT a.title, a.content, c.name
		FROM articles a
		LEFT JOIN categories c ON c.id = a.category_id
		WHERE a.id = $1`, id,
	).Scan(&src.Title, &src.Content, &src.CategoryName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrArticleNotFound
		}

		return nil, fmt.Errorf("get embedding source: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT t.name
		FROM article_tags at
		JOIN tags t ON t.id = at.tag_id
		WHERE at.article_id = $1
		ORDER BY t.name`, id)
	if err != nil {
		return nil, fmt.Errorf("get embedding source tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag name: %w", err)
		}

		src.TagNames = append(src.TagNames, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tag names: %w", err)
	}

	return &src, nil
}

// Package workers provides River job workers (e.g. article embedding generation).
package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"golang.org/x/time/rate"

	"github.com/pressroom/hub/internal/models"
	"github.com/pressroom/hub/internal/service"
)

// embeddingSourceStore loads the text material for an article.
type embeddingSourceStore interface {
	GetEmbeddingSource(ctx context.Context, id uuid.UUID) (*models.EmbeddingSource, error)
}

// embeddingStore persists a generated vector.
type embeddingStore interface {
	UpsertArticleEmbedding(ctx context.Context, articleID uuid.UUID, vec []float32) error
}

// ArticleEmbeddingWorker generates and stores the embedding vector for an
// article. The pipeline is best-effort: every failure is logged and the job
// completes without retrying, so an unreachable provider can never build a
// retry backlog. The article simply stays invisible to semantic search until
// the next significant edit re-enqueues it.
type ArticleEmbeddingWorker struct {
	river.WorkerDefaults[service.ArticleEmbeddingArgs]

	sources    embeddingSourceStore
	embeddings embeddingStore
	client     service.EmbeddingClient
	limiter    *rate.Limiter
}

// NewArticleEmbeddingWorker creates a worker that loads the article's text,
// calls the embedding provider and upserts the vector. limiter may be nil
// (no provider throttling).
func NewArticleEmbeddingWorker(
	sources embeddingSourceStore,
	embeddings embeddingStore,
	client service.EmbeddingClient,
	limiter *rate.Limiter,
) *ArticleEmbeddingWorker {
	return &ArticleEmbeddingWorker{
		sources:    sources,
		embeddings: embeddings,
		client:     client,
		limiter:    limiter,
	}
}

const articleEmbeddingTimeout = 30 * time.Second

// Timeout limits how long a single embedding job can run.
func (w *ArticleEmbeddingWorker) Timeout(*river.Job[service.ArticleEmbeddingArgs]) time.Duration {
	return articleEmbeddingTimeout
}

// Work loads the article text, generates the embedding, and persists it.
func (w *ArticleEmbeddingWorker) Work(ctx context.Context, job *river.Job[service.ArticleEmbeddingArgs]) error {
	articleID := job.Args.ArticleID

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			slog.Warn("embedding: rate limiter wait aborted",
				"article_id", articleID,
				"error", err,
			)

			return nil
		}
	}

	src, err := w.sources.GetEmbeddingSource(ctx, articleID)
	if err != nil {
		slog.Error("embedding: load source failed",
			"article_id", articleID,
			"error", err,
		)

		return nil // article deleted between enqueue and run, or store fault
	}

	text := service.BuildEmbeddingText(src)
	if text == "" {
		slog.Info("embedding: skipped (no text)", "article_id", articleID)

		return nil
	}

	vec, err := w.client.CreateEmbedding(ctx, text)
	if err != nil {
		slog.Error("embedding: provider failed",
			"article_id", articleID,
			"error", err,
		)

		return nil
	}

	if err := w.embeddings.UpsertArticleEmbedding(ctx, articleID, vec); err != nil {
		slog.Error("embedding: upsert failed",
			"article_id", articleID,
			"error", err,
		)

		return nil
	}

	slog.Info("embedding: stored", "article_id", articleID)

	return nil
}

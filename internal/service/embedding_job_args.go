package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

const (
	articleEmbeddingKind = "article_embedding"
	// EmbeddingsQueueName is the River queue used for article embedding jobs.
	EmbeddingsQueueName = "embeddings"
)

// ArticleEmbeddingInserter inserts embedding jobs (e.g. a River client).
type ArticleEmbeddingInserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// ArticleEmbeddingArgs is the job payload for recomputing and storing one
// article's embedding. Uniqueness is by ArticleID so duplicate triggers for the
// same article collapse into one job.
type ArticleEmbeddingArgs struct {
	ArticleID uuid.UUID `json:"article_id" river:"unique"`
}

// Kind returns the River job kind.
func (ArticleEmbeddingArgs) Kind() string { return articleEmbeddingKind }

var _ river.JobArgs = ArticleEmbeddingArgs{}

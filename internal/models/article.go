// Package models defines the domain types shared by repositories, services and handlers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ArticleStatus is the publication state of an article.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPending   ArticleStatus = "pending"
	StatusPublished ArticleStatus = "published"
	StatusRejected  ArticleStatus = "rejected"
)

// ParseArticleStatus parses s into an ArticleStatus. It returns (status, true)
// when s is a recognized status (case-insensitive match is the caller's job;
// statuses are stored lowercase) and (fallback, false) otherwise. All write and
// search paths go through this function so status validation lives in one place.
func ParseArticleStatus(s string, fallback ArticleStatus) (ArticleStatus, bool) {
	switch ArticleStatus(s) {
	case StatusDraft, StatusPending, StatusPublished, StatusRejected:
		return ArticleStatus(s), true
	default:
		return fallback, false
	}
}

// Article is a content document. EmbeddingVector and Moderation are both
// optional 1:1 snapshots owned by the article and replaced wholesale, never
// merged.
type Article struct {
	ID              uuid.UUID         `json:"id"`
	Title           string            `json:"title"`
	Content         string            `json:"content"`
	Status          ArticleStatus     `json:"status"`
	AuthorID        uuid.UUID         `json:"author_id"`
	CategoryID      *uuid.UUID        `json:"category_id,omitempty"`
	TagIDs          []uuid.UUID       `json:"tag_ids,omitempty"`
	ViewsCount      int               `json:"views_count"`
	RejectionReason *string           `json:"rejection_reason,omitempty"`
	Moderation      *ModerationResult `json:"moderation,omitempty"`
	HasEmbedding    bool              `json:"has_embedding"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// CreateArticleRequest is the payload for POST /api/articles.
// Status is optional; unrecognized values fall back to draft.
type CreateArticleRequest struct {
	Title      string      `json:"title" validate:"required,min=1,max=255,no_null_bytes"`
	Content    string      `json:"content" validate:"required,no_null_bytes"`
	Status     string      `json:"status,omitempty"`
	AuthorID   uuid.UUID   `json:"author_id" validate:"required"`
	CategoryID *uuid.UUID  `json:"category_id,omitempty"`
	TagIDs     []uuid.UUID `json:"tag_ids,omitempty"`
}

// UpdateArticleRequest is the payload for PATCH /api/articles/{id}.
// Nil fields are left unchanged. An unrecognized status is ignored with a warning.
type UpdateArticleRequest struct {
	Title      *string     `json:"title,omitempty" validate:"omitempty,min=1,max=255,no_null_bytes"`
	Content    *string     `json:"content,omitempty" validate:"omitempty,no_null_bytes"`
	Status     *string     `json:"status,omitempty"`
	CategoryID *uuid.UUID  `json:"category_id,omitempty"`
	TagIDs     []uuid.UUID `json:"tag_ids,omitempty"`
}

// SignificantChange reports whether the update touches a field that feeds the
// embedding text (title, content, category or tag set).
func (r *UpdateArticleRequest) SignificantChange() bool {
	return r.Title != nil || r.Content != nil || r.CategoryID != nil || r.TagIDs != nil
}

// EmbeddingSource is the content-relevant projection of an article used to
// build the text fed to the embedding model.
type EmbeddingSource struct {
	ArticleID    uuid.UUID
	Title        string
	Content      string
	CategoryName *string
	TagNames     []string
}

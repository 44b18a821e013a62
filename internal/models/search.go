package models

import "github.com/google/uuid"

// SearchResult is one ranked hit from a similarity search. Transient, never
// persisted. Similarity is in [0,1], rounded to 4 decimal places by the store.
type SearchResult struct {
	ArticleID      uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	ContentPreview string    `json:"content_preview"`
	Similarity     float64   `json:"similarity"`
}

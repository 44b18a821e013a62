package service

import (
	"fmt"
	"strings"

	"github.com/pressroom/hub/internal/models"
)

const (
	uncategorizedPlaceholder = "Uncategorized"
	noTagsPlaceholder        = "none"
)

// BuildEmbeddingText renders the structured text fed to the embedding model:
// title, category name, comma-joined tags and the full content. Placeholders
// keep the shape stable for articles without a category or tags.
func BuildEmbeddingText(src *models.EmbeddingSource) string {
	category := uncategorizedPlaceholder
	if src.CategoryName != nil && strings.TrimSpace(*src.CategoryName) != "" {
		category = *src.CategoryName
	}

	tags := noTagsPlaceholder
	if len(src.TagNames) > 0 {
		tags = strings.Join(src.TagNames, ", ")
	}

	return strings.TrimSpace(fmt.Sprintf(
		"Title: %s\nCategory: %s\nTags: %s\nContent:\n%s",
		src.Title, category, tags, src.Content,
	))
}

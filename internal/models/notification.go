package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what a notification is about.
type NotificationType string

const (
	NotificationArticlePublished         NotificationType = "article_published"
	NotificationArticlePendingModeration NotificationType = "article_pending_moderation"
	NotificationArticleRejected          NotificationType = "article_rejected"
	NotificationSystemError              NotificationType = "system_error"
	NotificationSystemInfo               NotificationType = "system_info"
)

// Notification is a message delivered to a user about their content.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	ArticleID   *uuid.UUID       `json:"article_id,omitempty"`
	IsRead      bool             `json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}

package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pressroom/hub/internal/models"
)

// Decision thresholds, evaluated in priority order: reject first, then pending,
// then publish.
const (
	rejectScoreThreshold  = 0.70
	pendingScoreThreshold = 0.35
)

// severeCategories force rejection regardless of score.
var severeCategories = []models.ModerationCategory{
	models.CategorySevereToxicity,
	models.CategoryViolence,
	models.CategoryHateSpeech,
}

const (
	defaultRejectionReason  = "Your article was rejected by automatic content moderation."
	pendingReviewMessage    = "Your article is awaiting manual review."
	publishedMessage        = "Your article has been published."
	moderationFailedMessage = "Content moderation failed, please try submitting again."
)

// ModerationClassifier classifies article content into a moderation snapshot.
type ModerationClassifier interface {
	Moderate(ctx context.Context, title, content string) (*models.ModerationResult, error)
}

// ModerationStore persists the moderation outcome on the article.
type ModerationStore interface {
	SetModerationResult(ctx context.Context, id uuid.UUID, result *models.ModerationResult) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ArticleStatus, rejectionReason *string) error
}

// Notifier delivers a notification to an article's author. Implementations are
// best-effort; delivery failures must not affect the triggering write.
type Notifier interface {
	NotifyAuthor(ctx context.Context, authorID uuid.UUID, typ models.NotificationType, message string, articleID *uuid.UUID)
}

// ModerationService classifies new article content and maps the verdict
// deterministically to a publication-state transition. It runs once, at
// creation time, on the synchronous write path: the decision is persisted
// before the creation call returns.
type ModerationService struct {
	classifier ModerationClassifier
	store      ModerationStore
	notifier   Notifier
	logger     *slog.Logger
}

// NewModerationService creates a ModerationService.
func NewModerationService(classifier ModerationClassifier, store ModerationStore, notifier Notifier, logger *slog.Logger) *ModerationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ModerationService{
		classifier: classifier,
		store:      store,
		notifier:   notifier,
		logger:     logger,
	}
}

// decision is the outcome of applying the thresholds to a snapshot.
type decision struct {
	status          models.ArticleStatus
	notification    models.NotificationType
	message         string
	rejectionReason *string
}

// decide maps a moderation snapshot to a status transition:
//  1. score > 0.70 or a severe category present -> rejected
//  2. flagged or score > 0.35 -> pending
//  3. otherwise -> published
func decide(result *models.ModerationResult) decision {
	severe := false

	for _, c := range severeCategories {
		for _, got := range result.Categories {
			if got == c {
				severe = true
			}
		}
	}

	switch {
	case result.Score > rejectScoreThreshold || severe:
		reason := defaultRejectionReason
		if result.Reason != nil && *result.Reason != "" {
			reason = *result.Reason
		}

		return decision{
			status:          models.StatusRejected,
			notification:    models.NotificationArticleRejected,
			message:         reason,
			rejectionReason: &reason,
		}
	case result.Flagged || result.Score > pendingScoreThreshold:
		return decision{
			status:       models.StatusPending,
			notification: models.NotificationArticlePendingModeration,
			message:      pendingReviewMessage,
		}
	default:
		return decision{
			status:       models.StatusPublished,
			notification: models.NotificationArticlePublished,
			message:      publishedMessage,
		}
	}
}

// ModerateArticle classifies the article and applies the resulting status
// transition. The snapshot is persisted whichever branch is taken. A classifier
// failure leaves the article in its pre-moderation status with no snapshot,
// notifies the author with a retry notice, and returns nil: moderation
// unavailability never aborts article creation. The passed article is updated
// in place with the persisted outcome.
func (s *ModerationService) ModerateArticle(ctx context.Context, article *models.Article) error {
	result, err := s.classifier.Moderate(ctx, article.Title, article.Content)
	if err != nil {
		s.logger.Error("moderation: classifier failed", "article_id", article.ID, "error", err)
		s.notifier.NotifyAuthor(ctx, article.AuthorID, models.NotificationSystemError, moderationFailedMessage, &article.ID)

		return nil
	}

	if err := s.store.SetModerationResult(ctx, article.ID, result); err != nil {
		return err
	}

	d := decide(result)

	if err := s.store.UpdateStatus(ctx, article.ID, d.status, d.rejectionReason); err != nil {
		return err
	}

	article.Status = d.status
	article.Moderation = result
	article.RejectionReason = d.rejectionReason

	s.logger.Info("moderation: decision applied",
		"article_id", article.ID,
		"status", d.status,
		"score", result.Score,
		"flagged", result.Flagged,
	)

	s.notifier.NotifyAuthor(ctx, article.AuthorID, d.notification, d.message, &article.ID)

	return nil
}

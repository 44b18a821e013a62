package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom/hub/internal/models"
)

type mockClassifier struct {
	moderateFunc func(ctx context.Context, title, content string) (*models.ModerationResult, error)
}

func (m *mockClassifier) Moderate(ctx context.Context, title, content string) (*models.ModerationResult, error) {
	return m.moderateFunc(ctx, title, content)
}

type mockModerationStore struct {
	setResultFunc func(ctx context.Context, id uuid.UUID, result *models.ModerationResult) error

	storedResult    *models.ModerationResult
	updatedStatus   *models.ArticleStatus
	rejectionReason *string
}

func (m *mockModerationStore) SetModerationResult(ctx context.Context, id uuid.UUID, result *models.ModerationResult) error {
	if m.setResultFunc != nil {
		return m.setResultFunc(ctx, id, result)
	}

	m.storedResult = result

	return nil
}

func (m *mockModerationStore) UpdateStatus(_ context.Context, _ uuid.UUID, status models.ArticleStatus, rejectionReason *string) error {
	m.updatedStatus = &status
	m.rejectionReason = rejectionReason

	return nil
}

type notifierCall struct {
	authorID uuid.UUID
	typ      models.NotificationType
	message  string
}

type mockNotifier struct {
	calls []notifierCall
}

func (m *mockNotifier) NotifyAuthor(
	_ context.Context, authorID uuid.UUID, typ models.NotificationType, message string, _ *uuid.UUID,
) {
	m.calls = append(m.calls, notifierCall{authorID: authorID, typ: typ, message: message})
}

func snapshot(flagged bool, score float64, categories ...models.ModerationCategory) *models.ModerationResult {
	return &models.ModerationResult{
		Flagged:     flagged,
		Score:       score,
		Categories:  categories,
		Confidence:  0.9,
		Model:       "llama3.2:3b",
		ModeratedAt: time.Now(),
	}
}

func testArticle() *models.Article {
	return &models.Article{
		ID:       uuid.New(),
		Title:    "Release notes",
		Content:  "We shipped things.",
		Status:   models.StatusDraft,
		AuthorID: uuid.New(),
	}
}

func TestModerationService_ModerateArticle(t *testing.T) {
	t.Run("severe content is rejected with the classifier reason", func(t *testing.T) {
		reason := "Explicit calls to violence."
		result := snapshot(true, 0.85, models.CategoryViolence)
		result.Reason = &reason

		store := &mockModerationStore{}
		notifier := &mockNotifier{}
		svc := NewModerationService(&mockClassifier{
			moderateFunc: func(context.Context, string, string) (*models.ModerationResult, error) {
				return result, nil
			},
		}, store, notifier, nil)

		article := testArticle()
		err := svc.ModerateArticle(context.Background(), article)

		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, article.Status)
		require.NotNil(t, article.RejectionReason)
		assert.Equal(t, reason, *article.RejectionReason)
		assert.Same(t, result, store.storedResult)
		require.NotNil(t, store.updatedStatus)
		assert.Equal(t, models.StatusRejected, *store.updatedStatus)

		require.Len(t, notifier.calls, 1)
		assert.Equal(t, models.NotificationArticleRejected, notifier.calls[0].typ)
		assert.Equal(t, article.AuthorID, notifier.calls[0].authorID)
	})

	t.Run("severe category alone rejects even with a low score", func(t *testing.T) {
		store := &mockModerationStore{}
		notifier := &mockNotifier{}
		svc := NewModerationService(&mockClassifier{
			moderateFunc: func(context.Context, string, string) (*models.ModerationResult, error) {
				return snapshot(false, 0.2, models.CategoryHateSpeech), nil
			},
		}, store, notifier, nil)

		article := testArticle()
		require.NoError(t, svc.ModerateArticle(context.Background(), article))

		assert.Equal(t, models.StatusRejected, article.Status)
		require.NotNil(t, article.RejectionReason)
	})

	t.Run("mid-score flagged content goes to pending", func(t *testing.T) {
		store := &mockModerationStore{}
		notifier := &mockNotifier{}
		svc := NewModerationService(&mockClassifier{
			moderateFunc: func(context.Context, string, string) (*models.ModerationResult, error) {
				return snapshot(true, 0.5, models.CategoryInsult), nil
			},
		}, store, notifier, nil)

		article := testArticle()
		require.NoError(t, svc.ModerateArticle(context.Background(), article))

		assert.Equal(t, models.StatusPending, article.Status)
		assert.Nil(t, article.RejectionReason)
		require.Len(t, notifier.calls, 1)
		assert.Equal(t, models.NotificationArticlePendingModeration, notifier.calls[0].typ)
	})

	t.Run("clean content is published", func(t *testing.T) {
		store := &mockModerationStore{}
		notifier := &mockNotifier{}
		svc := NewModerationService(&mockClassifier{
			moderateFunc: func(context.Context, string, string) (*models.ModerationResult, error) {
				return snapshot(false, 0.05), nil
			},
		}, store, notifier, nil)

		article := testArticle()
		require.NoError(t, svc.ModerateArticle(context.Background(), article))

		assert.Equal(t, models.StatusPublished, article.Status)
		require.Len(t, notifier.calls, 1)
		assert.Equal(t, models.NotificationArticlePublished, notifier.calls[0].typ)
	})

	t.Run("classifier failure leaves the article untouched", func(t *testing.T) {
		store := &mockModerationStore{}
		notifier := &mockNotifier{}
		svc := NewModerationService(&mockClassifier{
			moderateFunc: func(context.Context, string, string) (*models.ModerationResult, error) {
				return nil, errors.New("model not loaded")
			},
		}, store, notifier, nil)

		article := testArticle()
		err := svc.ModerateArticle(context.Background(), article)

		require.NoError(t, err)
		assert.Equal(t, models.StatusDraft, article.Status)
		assert.Nil(t, article.Moderation)
		assert.Nil(t, store.storedResult)
		assert.Nil(t, store.updatedStatus)

		require.Len(t, notifier.calls, 1)
		assert.Equal(t, models.NotificationSystemError, notifier.calls[0].typ)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		store := &mockModerationStore{
			setResultFunc: func(context.Context, uuid.UUID, *models.ModerationResult) error {
				return errors.New("connection reset")
			},
		}
		svc := NewModerationService(&mockClassifier{
			moderateFunc: func(context.Context, string, string) (*models.ModerationResult, error) {
				return snapshot(false, 0.05), nil
			},
		}, store, &mockNotifier{}, nil)

		err := svc.ModerateArticle(context.Background(), testArticle())

		require.Error(t, err)
	})
}

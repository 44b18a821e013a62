package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pressroom/hub/internal/models"
	"github.com/pressroom/hub/internal/repository"
)

// NotificationGateway pushes a notification to a connected client. Real-time
// delivery (e.g. WebSocket fan-out) is an external collaborator behind this
// narrow interface; the default implementation only logs.
type NotificationGateway interface {
	Push(ctx context.Context, recipientID uuid.UUID, n *models.Notification) error
}

// LogGateway is the no-op delivery gateway used when no real-time channel is wired.
type LogGateway struct{}

// Push logs the notification instead of delivering it.
func (LogGateway) Push(_ context.Context, recipientID uuid.UUID, n *models.Notification) error {
	slog.Debug("notification gateway (log only)", "recipient_id", recipientID, "type", n.Type)

	return nil
}

// NotificationService persists notifications and pushes them through the
// gateway. All operations are best-effort from the caller's perspective:
// NotifyAuthor never returns an error, it logs instead, so notification
// problems cannot fail a content write.
type NotificationService struct {
	notificationsRepo *repository.NotificationsRepository
	usersRepo         *repository.UsersRepository
	gateway           NotificationGateway
	logger            *slog.Logger
}

// NewNotificationService creates a NotificationService. The users repository is
// an explicit dependency: recipients are resolved here, not via any ambient
// store manager.
func NewNotificationService(
	notificationsRepo *repository.NotificationsRepository,
	usersRepo *repository.UsersRepository,
	gateway NotificationGateway,
	logger *slog.Logger,
) *NotificationService {
	if gateway == nil {
		gateway = LogGateway{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &NotificationService{
		notificationsRepo: notificationsRepo,
		usersRepo:         usersRepo,
		gateway:           gateway,
		logger:            logger,
	}
}

// NotifyAuthor records a notification for the author and pushes it through the
// gateway. Unknown recipients and storage or delivery failures are logged and
// swallowed.
func (s *NotificationService) NotifyAuthor(
	ctx context.Context, authorID uuid.UUID, typ models.NotificationType, message string, articleID *uuid.UUID,
) {
	user, err := s.usersRepo.GetByID(ctx, authorID)
	if err != nil {
		s.logger.Warn("notification: recipient lookup failed", "recipient_id", authorID, "error", err)

		return
	}

	n, err := s.notificationsRepo.Create(ctx, user.ID, typ, message, articleID)
	if err != nil {
		s.logger.Error("notification: store failed", "recipient_id", authorID, "type", typ, "error", err)

		return
	}

	if err := s.gateway.Push(ctx, user.ID, n); err != nil {
		s.logger.Warn("notification: push failed", "recipient_id", authorID, "type", typ, "error", err)
	}
}

// ListForUser returns the user's recent notifications.
func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	return s.notificationsRepo.ListForUser(ctx, userID)
}

// MarkRead flags a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.notificationsRepo.MarkRead(ctx, id)
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/pressroom/hub/internal/api/response"
	"github.com/pressroom/hub/internal/apperrors"
	"github.com/pressroom/hub/internal/models"
)

// NotificationsService defines the notification reads and updates the handler needs.
type NotificationsService interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// NotificationsHandler handles HTTP requests for user notifications.
type NotificationsHandler struct {
	service NotificationsService
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(service NotificationsService) *NotificationsHandler {
	return &NotificationsHandler{service: service}
}

// List handles GET /api/notifications?user_id={uuid}.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	userIDStr := r.URL.Query().Get("user_id")
	if userIDStr == "" {
		response.RespondBadRequest(w, "user_id query parameter is required")

		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		response.RespondBadRequest(w, "Invalid user_id")

		return
	}

	notifications, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		response.RespondInternalServerError(w, "Failed to list notifications")

		return
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}

	response.RespondJSON(w, http.StatusOK, notifications)
}

// MarkRead handles PATCH /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.RespondBadRequest(w, "Invalid notification ID")

		return
	}

	if err := h.service.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Notification not found")

			return
		}

		response.RespondInternalServerError(w, "Failed to mark notification read")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

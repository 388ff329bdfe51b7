package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"dueboard/backend/internal/models"
	"dueboard/backend/internal/notify"

	"github.com/gin-gonic/gin"
)

// NotificationResponse defines the API shape of a notification.
type NotificationResponse struct {
	ID         uint                    `json:"id"`
	Type       models.NotificationType `json:"type"`
	Message    string                  `json:"message"`
	ActorID    *uint                   `json:"actor_id,omitempty"`
	DeadlineID *uint                   `json:"deadline_id,omitempty"`
	Read       bool                    `json:"read"`
	CreatedAt  time.Time               `json:"created_at"`
}

func newNotificationResponses(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, NotificationResponse{
			ID:         n.ID,
			Type:       n.Type,
			Message:    n.Message,
			ActorID:    n.ActorID,
			DeadlineID: n.DeadlineID,
			Read:       n.Read,
			CreatedAt:  n.CreatedAt,
		})
	}
	return responses
}

// NotificationHandler serves the notifications API.
type NotificationHandler struct {
	store notify.Store
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(store notify.Store) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// GetNotifications godoc
// @Summary      List notifications
// @Description  Lists the user's notifications, newest first.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread query bool false "Only unread notifications"
// @Param        page   query int  false "Page number" default(1)
// @Param        limit  query int  false "Items per page" default(20)
// @Success      200 {object} PaginatedResponse[NotificationResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	unreadOnly := c.Query("unread") == "true"
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	notifications, total, err := h.store.List(c.Request.Context(), viewerID.(uint), unreadOnly, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(newNotificationResponses(notifications), total, page, limit))
}

// GetUnreadCount godoc
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]int64 "{"unread_count": 3}"
// @Failure      401 {object} ErrorResponse
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	count, err := h.store.UnreadCount(c.Request.Context(), viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch unread count"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkAsRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Notification ID"
// @Success      200 {object} map[string]string "{"message": "Notification marked as read"}"
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /notifications/{id}/read [put]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := h.store.MarkRead(c.Request.Context(), viewerID.(uint), uint(id)); err != nil {
		notificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllAsRead godoc
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]string "{"message": "All notifications marked as read"}"
// @Failure      401 {object} ErrorResponse
// @Router       /notifications/mark-all-read [put]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	if err := h.store.MarkAllRead(c.Request.Context(), viewerID.(uint)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// DeleteNotification godoc
// @Summary      Delete a notification
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Notification ID"
// @Success      200 {object} map[string]string "{"message": "Notification deleted"}"
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := h.store.Delete(c.Request.Context(), viewerID.(uint), uint(id)); err != nil {
		notificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

func notificationError(c *gin.Context, err error) {
	if errors.Is(err, notify.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process notification request"})
}

package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// @Summary List notifications
// @Description Get the caller's latest notifications and the unread counter.
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max notifications" default(20)
// @Param unreadOnly query bool false "Only unread"
// @Success 200 {object} NotificationListResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /notifications [get]
func (h *Handler) listNotifications(c *gin.Context) {
	log := h.logFor(c, "listNotifications")
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	// 0 - лимит по умолчанию из конфигурации
	limit, _ := strconv.Atoi(c.Query("limit"))
	unreadOnly := c.Query("unreadOnly") == "true"

	notifications, unread, err := h.notificationService.List(c.Request.Context(), actor, limit, unreadOnly)
	if err != nil {
		respondError(c, log, "Failed to list notifications", err)
		return
	}
	c.JSON(http.StatusOK, NotificationListResponse{
		Notifications: ModelsToNotificationResponses(notifications),
		UnreadCount:   unread,
	})
}

// @Summary Mark notification as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} NotificationEnvelope
// @Failure 400 {object} ErrorResponse "Invalid notification ID"
// @Failure 404 {object} ErrorResponse "Notification not found"
// @Router /notifications/{id}/read [put]
func (h *Handler) markNotificationRead(c *gin.Context) {
	id, ok := parseID(c, "notification")
	if !ok {
		return
	}
	log := h.logFor(c, "markNotificationRead").WithField("id", id)
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	notification, err := h.notificationService.MarkRead(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, log, "Failed to mark notification as read", err)
		return
	}
	c.JSON(http.StatusOK, NotificationEnvelope{Notification: ModelToNotificationResponse(notification)})
}

// @Summary Mark all notifications as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /notifications/read-all [put]
func (h *Handler) markAllNotificationsRead(c *gin.Context) {
	log := h.logFor(c, "markAllNotificationsRead")
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if _, err := h.notificationService.MarkAllRead(c.Request.Context(), actor); err != nil {
		respondError(c, log, "Failed to mark notifications as read", err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "All notifications marked as read"})
}

// @Summary Delete notification
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Invalid notification ID"
// @Failure 404 {object} ErrorResponse "Notification not found"
// @Router /notifications/{id} [delete]
func (h *Handler) deleteNotification(c *gin.Context) {
	id, ok := parseID(c, "notification")
	if !ok {
		return
	}
	log := h.logFor(c, "deleteNotification").WithField("id", id)
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, log, "Failed to delete notification", err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Notification deleted"})
}

package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"backoffice/database"
	"backoffice/models"
	"backoffice/services/notification"
	"backoffice/services/tasks"
	"backoffice/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultHeartbeat = 25 * time.Second

// NotificationHandler serves the notification feed and its live stream.
type NotificationHandler struct {
	svc       notification.NotificationService
	enqueuer  tasks.Enqueuer
	heartbeat time.Duration
}

// NewNotificationHandler creates the handler. enqueuer may be nil, in which
// case created notifications are delivered inline.
func NewNotificationHandler(svc notification.NotificationService, enqueuer tasks.Enqueuer) *NotificationHandler {
	return &NotificationHandler{svc: svc, enqueuer: enqueuer, heartbeat: defaultHeartbeat}
}

func (h *NotificationHandler) failed(c *gin.Context, action string, err error) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	getLogger(c).Error("Failed to "+action, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
}

// ListNotificationsHandler handles GET /notifications?limit=n.
func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	limit := notification.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.JSONError(c, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
			return
		}
		limit = n
	}
	items, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		h.failed(c, "list notifications", err)
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	c.JSON(http.StatusOK, items)
}

// UnreadCountHandler handles GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCountHandler(c *gin.Context) {
	n, err := h.svc.UnreadCount(c.Request.Context())
	if err != nil {
		h.failed(c, "count unread notifications", err)
		return
	}
	c.JSON(http.StatusOK, models.UnreadCount{Count: n})
}

// MarkNotificationRead handles PATCH /notifications/:id/read.
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	if err := h.svc.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		h.failed(c, "mark notification read", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllNotificationsRead handles PATCH /notifications/read-all.
func (h *NotificationHandler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.svc.MarkAllRead(c.Request.Context()); err != nil {
		h.failed(c, "mark notifications read", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteNotificationHandler handles DELETE /notifications/:id.
func (h *NotificationHandler) DeleteNotificationHandler(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.failed(c, "delete notification", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateNotificationHandler handles POST /notifications. With a queue
// configured the draft is enqueued and 202 is returned with the task id.
func (h *NotificationHandler) CreateNotificationHandler(c *gin.Context) {
	var draft models.NotificationDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid notification", err.Error())
		return
	}

	if h.enqueuer != nil {
		id, err := h.enqueuer.EnqueueNotification(c.Request.Context(), draft)
		if err != nil {
			getLogger(c).Error("Failed to enqueue notification", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to queue notification"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"taskId": id})
		return
	}

	n, err := h.svc.Create(c.Request.Context(), draft)
	if err != nil {
		if errors.Is(err, notification.ErrInvalidDraft) {
			utils.JSONError(c, http.StatusBadRequest, "Invalid notification", err.Error())
			return
		}
		h.failed(c, "create notification", err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// StreamNotifications handles GET /notifications/stream. A "ready" event is
// written once the subscription is live; every created notification follows
// as a "notification" event.
func (h *NotificationHandler) StreamNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	events, cancel, err := h.svc.Subscribe(ctx)
	if err != nil {
		getLogger(c).Error("Failed to subscribe to notifications", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Notification stream unavailable"})
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("ready", "ok")
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case n, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("notification", n)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", strconv.FormatInt(time.Now().Unix(), 10))
			return true
		}
	})
	getLogger(c).Debug("notification stream closed")
}

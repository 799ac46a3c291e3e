package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/services"
)

const streamKeepAlive = 25 * time.Second

func (h *Handler) GetNotifications(c *gin.Context) {
	uid, _ := caller(c)
	list, err := h.svc.Notifications.GetUserNotifications(c.Request.Context(), uid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if list == nil {
		list = make([]models.Notification, 0)
	}
	respondOK(c, list)
}

// CreateNotification lets a practitioner notify one of their patients, or a
// user leave a reminder for themselves.
func (h *Handler) CreateNotification(c *gin.Context) {
	var n models.Notification
	if !h.bind(c, &n) {
		return
	}

	uid, _ := caller(c)
	if n.UserID == "" {
		n.UserID = uid
	}
	if n.UserID != uid {
		ok, err := h.canSeePatient(c, n.UserID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		if !ok {
			h.respondError(c, Forbidden("You cannot notify this user"))
			return
		}
	}

	if _, err := h.svc.Notifications.CreateNotification(c.Request.Context(), &n); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, n)
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	ctx := c.Request.Context()
	n, err := h.svc.Notifications.GetNotification(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if uid, _ := caller(c); n.UserID != uid {
		h.respondError(c, services.ErrNotificationNotFound)
		return
	}

	n, err = h.svc.Notifications.MarkAsRead(ctx, n.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, n)
}

// StreamUnread pushes the caller's full unread set as a server-sent event
// whenever it changes. The subscription ends when the client goes away.
func (h *Handler) StreamUnread(c *gin.Context) {
	ctx := c.Request.Context()
	uid, _ := caller(c)

	updates := make(chan []models.Notification, 1)
	stop, err := h.svc.Notifications.SubscribeUnread(ctx, uid, func(unread []models.Notification) {
		// Only the latest set matters.
		select {
		case <-updates:
		default:
		}
		updates <- unread
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer stop()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case unread := <-updates:
			if unread == nil {
				unread = make([]models.Notification, 0)
			}
			c.SSEvent("unread", gin.H{"count": len(unread), "notifications": unread})
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}

package viewmodel

import (
	"context"
	"sync"

	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/services"
)

// NotificationsView holds a user's recent notifications and a live unread count.
type NotificationsView struct {
	*Resource[[]models.Notification]
	notifications *services.NotificationService
	uid           string

	mu     sync.Mutex
	unread int
	stop   func()
}

func NewNotificationsView(notifications *services.NotificationService, uid string) *NotificationsView {
	v := &NotificationsView{notifications: notifications, uid: uid}
	v.Resource = NewResource(func(ctx context.Context) ([]models.Notification, error) {
		if uid == "" {
			return nil, nil
		}
		return notifications.GetUserNotifications(ctx, uid)
	})
	return v
}

func (v *NotificationsView) UnreadCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.unread
}

// Refresh reloads the recent list and, unless Watch owns it, the unread count.
func (v *NotificationsView) Refresh(ctx context.Context) error {
	if err := v.Resource.Refresh(ctx); err != nil {
		return err
	}
	return v.recount(ctx)
}

// Watch keeps the unread count in step with the store until Close.
func (v *NotificationsView) Watch(ctx context.Context, uid string) error {
	stop, err := v.notifications.SubscribeUnread(ctx, uid, func(unread []models.Notification) {
		v.mu.Lock()
		v.unread = len(unread)
		v.mu.Unlock()
	})
	if err != nil {
		return err
	}
	v.mu.Lock()
	prev := v.stop
	v.stop = stop
	v.mu.Unlock()
	if prev != nil {
		prev()
	}
	return nil
}

func (v *NotificationsView) MarkAsRead(ctx context.Context, id string) error {
	err := v.Mutate(ctx, func(ctx context.Context) error {
		_, err := v.notifications.MarkAsRead(ctx, id)
		return err
	}, func(list []models.Notification) []models.Notification {
		out := make([]models.Notification, len(list))
		copy(out, list)
		for i := range out {
			if out[i].ID == id {
				out[i].Read = true
			}
		}
		return out
	})
	if err != nil {
		return err
	}
	return v.recount(ctx)
}

func (v *NotificationsView) Create(ctx context.Context, n *models.Notification) (string, error) {
	return v.notifications.CreateNotification(ctx, n)
}

func (v *NotificationsView) Close() {
	v.mu.Lock()
	stop := v.stop
	v.stop = nil
	v.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// recount reads the full unread set, which the recent list may not hold.
// It leaves the count alone while a Watch is running.
func (v *NotificationsView) recount(ctx context.Context) error {
	if v.uid == "" || v.watching() {
		return nil
	}
	unread, err := v.notifications.Unread(ctx, v.uid)
	if err != nil {
		return err
	}
	v.mu.Lock()
	if v.stop == nil {
		v.unread = len(unread)
	}
	v.mu.Unlock()
	return nil
}

func (v *NotificationsView) watching() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stop != nil
}

func countUnread(list []models.Notification) int {
	n := 0
	for _, item := range list {
		if !item.Read {
			n++
		}
	}
	return n
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"github.com/harentsoaR/ayursutra-api/internal/messaging"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/store"
)

// MaxRecentNotifications caps GetUserNotifications.
const MaxRecentNotifications = 20

const smsTimeout = 15 * time.Second

type NotificationService struct {
	store  store.Store
	broker messaging.Broker
	users  *UserService
	sms    SMSSender
	log    *logger.Logger
	now    func() time.Time
}

// CreateNotification stores an unread notification and signals the
// recipient's subscribers. High and urgent notifications also go out by SMS
// when the recipient has a phone number.
func (s *NotificationService) CreateNotification(ctx context.Context, n *models.Notification) (string, error) {
	if n.Priority == "" {
		n.Priority = models.PriorityMedium
	}
	if n.Type == "" {
		n.Type = models.NotificationSystem
	}
	if err := validateStruct(n); err != nil {
		return "", err
	}

	n.ID = ""
	n.Read = false
	n.ReadAt = nil
	n.CreatedAt = s.now()

	id, err := s.store.Add(ctx, models.CollectionNotifications, n)
	if err != nil {
		s.log.Error(err, "failed to create notification", "userId", n.UserID)
		return "", fmt.Errorf("create notification: %w", err)
	}
	n.ID = id

	s.changed(ctx, n, models.ChangeCreated)
	if n.Priority == models.PriorityHigh || n.Priority == models.PriorityUrgent {
		s.sendSMS(ctx, *n)
	}
	return id, nil
}

// GetUserNotifications returns the user's most recent notifications, newest first.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(notifications) > MaxRecentNotifications {
		notifications = notifications[:MaxRecentNotifications]
	}
	return notifications, nil
}

func (s *NotificationService) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := s.store.Get(ctx, models.CollectionNotifications, id, &n); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

// MarkAsRead flips read to true. Marking an already-read notification is a no-op.
func (s *NotificationService) MarkAsRead(ctx context.Context, id string) (*models.Notification, error) {
	n, err := s.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}

	readAt := s.now()
	if err := s.store.Update(ctx, models.CollectionNotifications, id, models.Fields{"read": true, "readAt": readAt}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		s.log.Error(err, "failed to mark notification read", "notificationId", id)
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n.Read = true
	n.ReadAt = &readAt

	s.changed(ctx, n, models.ChangeUpdated)
	return n, nil
}

// SubscribeUnread calls fn with the user's complete unread set now and after
// every change. The returned func stops the subscription.
func (s *NotificationService) SubscribeUnread(ctx context.Context, userID string, fn func([]models.Notification)) (func(), error) {
	return watch(ctx, s.broker, channelFor(topicNotifications, userID), func(ctx context.Context) {
		unread, err := s.Unread(ctx, userID)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Error(err, "unread subscription refresh failed", "userId", userID)
			}
			return
		}
		fn(unread)
	})
}

// Unread returns every unread notification for the user, newest first.
func (s *NotificationService) Unread(ctx context.Context, userID string) ([]models.Notification, error) {
	all, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread := make([]models.Notification, 0, len(all))
	for _, n := range all {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

func (s *NotificationService) find(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.store.Find(ctx, models.CollectionNotifications, store.NewQuery(store.Where("userId", userID)), &notifications); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (s *NotificationService) changed(ctx context.Context, n *models.Notification, kind models.ChangeKind) {
	ev := models.ChangeEvent{Collection: models.CollectionNotifications, ID: n.ID, Kind: kind, At: s.now()}
	publishChange(ctx, s.broker, s.log, topicNotifications, ev, n.UserID)
}

// sendSMS runs in the background so it doesn't hold up the caller.
func (s *NotificationService) sendSMS(ctx context.Context, n models.Notification) {
	if s.sms == nil || s.users == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	go func() {
		ctx, cancel := context.WithTimeout(ctx, smsTimeout)
		defer cancel()

		profile, err := s.users.GetUser(ctx, n.UserID)
		if err != nil {
			s.log.Debug("SMS not sent: recipient profile unavailable", "userId", n.UserID, "error", err.Error())
			return
		}
		phone := profile.Base().Phone
		if phone == "" {
			s.log.Debug("SMS not sent: recipient has no phone number", "userId", n.UserID)
			return
		}

		body := fmt.Sprintf("AyurSutra: %s - %s", n.Title, n.Message)
		if err := s.sms.Send(ctx, phone, body); err != nil {
			s.log.Error(err, "failed to send SMS", "userId", n.UserID)
			return
		}
		s.log.Info("SMS sent", "userId", n.UserID, "notificationId", n.ID)
	}()
}

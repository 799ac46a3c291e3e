package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/harentsoaR/ayursutra-api/internal/messaging"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSMS struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSMS) Send(ctx context.Context, phone, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, phone+": "+message)
	return nil
}

func (r *recordingSMS) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestCreateNotificationDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	n := &models.Notification{UserID: "p1", Title: "Welcome", Read: true}
	id, err := f.svc.Notifications.CreateNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, id, n.ID)
	assert.Equal(t, models.PriorityMedium, n.Priority)
	assert.Equal(t, models.NotificationSystem, n.Type)
	assert.False(t, n.Read)

	_, err = f.svc.Notifications.CreateNotification(ctx, &models.Notification{UserID: "p1", Title: "x", Priority: "extreme"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Notifications.CreateNotification(ctx, &models.Notification{Title: "x"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetUserNotificationsNewestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < MaxRecentNotifications+5; i++ {
		f.clock.Advance(time.Minute)
		_, err := f.svc.Notifications.CreateNotification(ctx, &models.Notification{UserID: "p1", Title: "n"})
		require.NoError(t, err)
	}
	_, err := f.svc.Notifications.CreateNotification(ctx, &models.Notification{UserID: "p2", Title: "other"})
	require.NoError(t, err)

	got, err := f.svc.Notifications.GetUserNotifications(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, MaxRecentNotifications)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].CreatedAt.After(got[i].CreatedAt))
	}
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id, err := f.svc.Notifications.CreateNotification(ctx, &models.Notification{UserID: "p1", Title: "Reminder"})
	require.NoError(t, err)

	first, err := f.svc.Notifications.MarkAsRead(ctx, id)
	require.NoError(t, err)
	assert.True(t, first.Read)
	require.NotNil(t, first.ReadAt)
	readAt := *first.ReadAt

	f.clock.Advance(time.Hour)
	second, err := f.svc.Notifications.MarkAsRead(ctx, id)
	require.NoError(t, err)
	assert.True(t, second.Read)
	require.NotNil(t, second.ReadAt)
	assert.True(t, readAt.Equal(*second.ReadAt))

	unread, err := f.svc.Notifications.Unread(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, unread)

	_, err = f.svc.Notifications.MarkAsRead(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestSubscribeUnreadDeliversFullSet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(t)

	var (
		mu    sync.Mutex
		calls int
		last  []models.Notification
	)
	stop, err := f.svc.Notifications.SubscribeUnread(ctx, "p1", func(unread []models.Notification) {
		mu.Lock()
		calls++
		last = unread
		mu.Unlock()
	})
	require.NoError(t, err)
	defer stop()

	state := func() (int, int) {
		mu.Lock()
		defer mu.Unlock()
		return calls, len(last)
	}
	require.Eventually(t, func() bool { c, _ := state(); return c >= 1 }, time.Second, 5*time.Millisecond)

	var ids []string
	for _, title := range []string{"Prepare", "Reminder"} {
		id, err := f.svc.Notifications.CreateNotification(ctx, &models.Notification{UserID: "p1", Title: title})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.Eventually(t, func() bool { _, n := state(); return n == 2 }, time.Second, 5*time.Millisecond)

	_, err = f.svc.Notifications.MarkAsRead(ctx, ids[0])
	require.NoError(t, err)
	require.Eventually(t, func() bool { _, n := state(); return n == 1 }, time.Second, 5*time.Millisecond)

	// Another user's notifications never reach this subscriber.
	_, err = f.svc.Notifications.CreateNotification(ctx, &models.Notification{UserID: "p2", Title: "x"})
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, n := state()
	assert.Equal(t, 1, n)
}

func TestHighPriorityNotificationSendsSMS(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sms := &recordingSMS{}
	svc := New(Deps{Store: mem, Broker: messaging.NewMemoryBroker(), SMS: sms})

	p := &models.PatientProfile{ProfileBase: models.ProfileBase{UID: "p1", Name: "Asha", Phone: "+15550100"}}
	require.NoError(t, svc.Users.CreateUserIndex(ctx, p))

	_, err := svc.Notifications.CreateNotification(ctx, &models.Notification{UserID: "p1", Title: "Low", Priority: models.PriorityLow})
	require.NoError(t, err)
	_, err = svc.Notifications.CreateNotification(ctx, &models.Notification{UserID: "p1", Title: "Urgent", Priority: models.PriorityUrgent})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return sms.count() == 1 }, time.Second, 5*time.Millisecond)
	sms.mu.Lock()
	assert.Contains(t, sms.sent[0], "+15550100: AyurSutra: Urgent")
	sms.mu.Unlock()
}

package viewmodel

import (
	"context"
	"sync"

	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/services"
)

// SessionsView holds a user's sessions and the upcoming subset.
type SessionsView struct {
	*Resource[services.SessionSnapshot]
	sessions *services.SessionService

	mu   sync.Mutex
	stop func()
}

func NewSessionsView(sessions *services.SessionService, uid string, role models.Role) *SessionsView {
	v := &SessionsView{sessions: sessions}
	v.Resource = NewResource(func(ctx context.Context) (services.SessionSnapshot, error) {
		if uid == "" || role == "" {
			return services.SessionSnapshot{}, nil
		}
		all, err := sessions.GetUserSessions(ctx, uid, role)
		if err != nil {
			return services.SessionSnapshot{}, err
		}
		upcoming, err := sessions.GetUpcomingSessions(ctx, uid, role)
		if err != nil {
			return services.SessionSnapshot{}, err
		}
		return services.SessionSnapshot{All: all, Upcoming: upcoming}, nil
	})
	return v
}

// Watch keeps the view current until Close or ctx ends. Calling Watch again
// replaces the previous subscription.
func (v *SessionsView) Watch(ctx context.Context, uid string, role models.Role) error {
	stop, err := v.sessions.SubscribeUserSessions(ctx, uid, role, v.Set)
	if err != nil {
		v.Fail(err)
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

func (v *SessionsView) Create(ctx context.Context, session *models.Session) (string, error) {
	return v.sessions.CreateSession(ctx, session)
}

func (v *SessionsView) Update(ctx context.Context, id string, updates models.Fields) (*models.Session, error) {
	return v.sessions.UpdateSession(ctx, id, updates)
}

func (v *SessionsView) Close() {
	v.mu.Lock()
	stop := v.stop
	v.stop = nil
	v.mu.Unlock()
	if stop != nil {
		stop()
	}
}

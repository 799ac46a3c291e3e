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

// MaxUpcomingSessions caps the upcoming list.
const MaxUpcomingSessions = 10

type SessionService struct {
	store    store.Store
	broker   messaging.Broker
	notifier *NotificationService
	log      *logger.Logger
	now      func() time.Time
	loc      *time.Location
}

// SessionSnapshot is what a sessions subscriber receives on every change.
type SessionSnapshot struct {
	All      []models.Session `json:"all"`
	Upcoming []models.Session `json:"upcoming"`
}

func participantField(role models.Role) (string, error) {
	switch role {
	case models.RolePatient:
		return "patientId", nil
	case models.RolePractitioner:
		return "practitionerId", nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
}

func (s *SessionService) CreateSession(ctx context.Context, session *models.Session) (string, error) {
	if err := validateStruct(session); err != nil {
		return "", err
	}
	if session.Status == "" {
		session.Status = models.SessionPending
	}
	if !session.Status.Valid() {
		return "", fmt.Errorf("%w: unknown session status %q", ErrValidation, session.Status)
	}

	now := s.now()
	session.ID = ""
	session.CreatedAt = now
	session.UpdatedAt = now

	id, err := s.store.Add(ctx, models.CollectionSessions, session)
	if err != nil {
		s.log.Error(err, "failed to create session", "patientId", session.PatientID)
		return "", fmt.Errorf("create session: %w", err)
	}
	session.ID = id

	s.changed(ctx, session, models.ChangeCreated)
	s.notify(ctx, session, "Session Scheduled", fmt.Sprintf("Your %s session on %s has been booked.", session.Therapy, describeWhen(session)), models.PriorityMedium)
	return id, nil
}

func (s *SessionService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := s.store.Get(ctx, models.CollectionSessions, id, &session); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

// Session fields a participant may change.
var sessionUpdateFields = fieldSet("therapy", "date", "time", "duration", "location", "status", "notes", "preparation")

// UpdateSession applies a partial update. A date given as a string is read in
// the service's zone and stored as a datetime.
func (s *SessionService) UpdateSession(ctx context.Context, id string, updates models.Fields) (*models.Session, error) {
	for _, f := range []string{"_id", "id", "createdAt"} {
		if _, ok := updates[f]; ok {
			return nil, fmt.Errorf("%w: %s", ErrImmutableField, f)
		}
	}

	updates = copyFields(updates)
	if raw, ok := updates["status"]; ok {
		status, _ := raw.(string)
		if !models.SessionStatus(status).Valid() {
			return nil, fmt.Errorf("%w: unknown session status %v", ErrValidation, raw)
		}
	}
	if raw, ok := updates["date"].(string); ok {
		date, err := models.ParseSessionDateIn(raw, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		updates["date"] = date
	}

	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	fields, err := applyUpdates(session, updates, sessionUpdateFields)
	if err != nil {
		return nil, err
	}
	fields["updatedAt"] = s.now()

	if err := s.store.Update(ctx, models.CollectionSessions, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		s.log.Error(err, "failed to update session", "sessionId", id)
		return nil, fmt.Errorf("update session: %w", err)
	}

	if session, err = s.GetSession(ctx, id); err != nil {
		return nil, err
	}
	s.changed(ctx, session, models.ChangeUpdated)
	return session, nil
}

// CancelSession deletes the session outright.
func (s *SessionService) CancelSession(ctx context.Context, id string) error {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, models.CollectionSessions, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		s.log.Error(err, "failed to cancel session", "sessionId", id)
		return fmt.Errorf("cancel session: %w", err)
	}

	s.changed(ctx, session, models.ChangeDeleted)
	s.notify(ctx, session, "Session Cancelled", fmt.Sprintf("Your %s session on %s has been cancelled.", session.Therapy, describeWhen(session)), models.PriorityHigh)
	return nil
}

// GetUserSessions returns every session the user takes part in, newest first.
func (s *SessionService) GetUserSessions(ctx context.Context, userID string, role models.Role) ([]models.Session, error) {
	sessions, err := s.find(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	SortSessions(sessions, true)
	return sessions, nil
}

// GetUpcomingSessions returns sessions dated today or later, soonest first.
func (s *SessionService) GetUpcomingSessions(ctx context.Context, userID string, role models.Role) ([]models.Session, error) {
	sessions, err := s.find(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	return UpcomingSessions(sessions, s.today()), nil
}

// SubscribeUserSessions calls fn with a fresh snapshot now and after every
// change to the user's sessions. The returned func stops the subscription.
func (s *SessionService) SubscribeUserSessions(ctx context.Context, userID string, role models.Role, fn func(SessionSnapshot)) (func(), error) {
	if _, err := participantField(role); err != nil {
		return nil, err
	}
	return watch(ctx, s.broker, channelFor(topicSessions, userID), func(ctx context.Context) {
		sessions, err := s.find(ctx, userID, role)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Error(err, "session subscription refresh failed", "userId", userID)
			}
			return
		}
		fn(s.snapshot(sessions))
	})
}

func (s *SessionService) snapshot(sessions []models.Session) SessionSnapshot {
	upcoming := UpcomingSessions(sessions, s.today())
	SortSessions(sessions, true)
	return SessionSnapshot{All: sessions, Upcoming: upcoming}
}

func (s *SessionService) find(ctx context.Context, userID string, role models.Role) ([]models.Session, error) {
	field, err := participantField(role)
	if err != nil {
		return nil, err
	}
	var sessions []models.Session
	if err := s.store.Find(ctx, models.CollectionSessions, store.NewQuery(store.Where(field, userID)), &sessions); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *SessionService) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

func (s *SessionService) changed(ctx context.Context, session *models.Session, kind models.ChangeKind) {
	ev := models.ChangeEvent{Collection: models.CollectionSessions, ID: session.ID, Kind: kind, At: s.now()}
	publishChange(ctx, s.broker, s.log, topicSessions, ev, session.PatientID, session.PractitionerID)
}

func (s *SessionService) notify(ctx context.Context, session *models.Session, title, message string, priority models.Priority) {
	if s.notifier == nil {
		return
	}
	_, err := s.notifier.CreateNotification(ctx, &models.Notification{
		UserID:    session.PatientID,
		Type:      models.NotificationSchedule,
		Title:     title,
		Message:   message,
		Priority:  priority,
		SessionID: session.ID,
	})
	if err != nil {
		s.log.Error(err, "failed to notify patient", "sessionId", session.ID)
	}
}

func describeWhen(session *models.Session) string {
	if session.Date.IsZero() {
		return "an unconfirmed date"
	}
	when := session.Date.Format("Jan 2")
	if session.Time != "" {
		when += " at " + session.Time
	}
	return when
}

// sessionLess orders sessions by date, then time of day, then id. Sessions
// without a usable date sort before all others.
func sessionLess(a, b *models.Session) bool {
	if !a.Date.Equal(b.Date.Time) {
		return a.Date.Before(b.Date.Time)
	}
	if ta, tb := models.ClockMinutes(a.Time), models.ClockMinutes(b.Time); ta != tb {
		return ta < tb
	}
	return a.ID < b.ID
}

// SortSessions sorts in place, descending when newestFirst is set.
func SortSessions(sessions []models.Session, newestFirst bool) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if newestFirst {
			return sessionLess(&sessions[j], &sessions[i])
		}
		return sessionLess(&sessions[i], &sessions[j])
	})
}

// UpcomingSessions keeps sessions dated on or after today's midnight, sorted
// soonest first and capped at MaxUpcomingSessions. sessions is not modified.
func UpcomingSessions(sessions []models.Session, today time.Time) []models.Session {
	upcoming := make([]models.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.Date.IsZero() || session.Date.Before(today) {
			continue
		}
		upcoming = append(upcoming, session)
	}
	SortSessions(upcoming, false)
	if len(upcoming) > MaxUpcomingSessions {
		upcoming = upcoming[:MaxUpcomingSessions]
	}
	return upcoming
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"github.com/harentsoaR/ayursutra-api/internal/messaging"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
)

var validate = validator.New()

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// Deps are the collaborators shared by every data service.
type Deps struct {
	Store    store.Store
	Broker   messaging.Broker
	Logger   *logger.Logger
	SMS      SMSSender
	Now      func() time.Time
	Location *time.Location
}

func (d *Deps) defaults() {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Broker == nil {
		d.Broker = messaging.NewMemoryBroker()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Location == nil {
		d.Location = time.Local
	}
}

// Services is the data-access layer: one service per entity over a single store.
type Services struct {
	Users         *UserService
	Patients      *PatientService
	Practitioners *PractitionerService
	Sessions      *SessionService
	Notifications *NotificationService
	Feedback      *FeedbackService
	Notes         *NoteService
	Progress      *ProgressService
	Messages      *MessageService
	Migration     *MigrationService
}

func New(d Deps) *Services {
	d.defaults()

	users := &UserService{store: d.Store, log: d.Logger.With("service", "users"), now: d.Now}
	notifications := &NotificationService{
		store:  d.Store,
		broker: d.Broker,
		users:  users,
		sms:    d.SMS,
		log:    d.Logger.With("service", "notifications"),
		now:    d.Now,
	}

	return &Services{
		Users:         users,
		Patients:      &PatientService{users: users, log: d.Logger.With("service", "patients")},
		Practitioners: &PractitionerService{users: users, store: d.Store},
		Sessions: &SessionService{
			store:    d.Store,
			broker:   d.Broker,
			notifier: notifications,
			log:      d.Logger.With("service", "sessions"),
			now:      d.Now,
			loc:      d.Location,
		},
		Notifications: notifications,
		Feedback:      &FeedbackService{store: d.Store, log: d.Logger.With("service", "feedback"), now: d.Now},
		Notes:         &NoteService{store: d.Store, users: users, log: d.Logger.With("service", "notes"), now: d.Now},
		Progress:      &ProgressService{store: d.Store, log: d.Logger.With("service", "progress"), now: d.Now},
		Messages:      &MessageService{store: d.Store, log: d.Logger.With("service", "messages"), now: d.Now},
		Migration:     &MigrationService{store: d.Store, log: d.Logger.With("service", "migration"), now: d.Now},
	}
}

func copyFields(fields models.Fields) models.Fields {
	out := make(models.Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func fieldSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// applyUpdates decodes updates onto row, a pointer to the current document,
// and validates the result. A key outside allowed, or a value that does not
// decode into the field it names, is a validation error. The returned fields
// hold each updated value as the row's type encodes it.
func applyUpdates(row any, updates models.Fields, allowed map[string]bool) (models.Fields, error) {
	for k := range updates {
		if !allowed[k] {
			return nil, fmt.Errorf("%w: unknown field %q", ErrValidation, k)
		}
	}

	raw, err := bson.Marshal(updates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := bson.Unmarshal(raw, row); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := validateStruct(row); err != nil {
		return nil, err
	}

	raw, err = bson.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", row, err)
	}
	var encoded bson.M
	if err := bson.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("encode %T: %w", row, err)
	}
	fields := make(models.Fields, len(updates)+1)
	for k := range updates {
		fields[k] = encoded[k]
	}
	return fields, nil
}

// publishChange signals a row change on each user's channel. Delivery is
// best-effort: subscribers re-query, so a lost signal only delays a refresh.
func publishChange(ctx context.Context, b messaging.Broker, log *logger.Logger, topic string, ev models.ChangeEvent, userIDs ...string) {
	seen := make(map[string]bool, len(userIDs))
	for _, uid := range userIDs {
		if uid == "" || seen[uid] {
			continue
		}
		seen[uid] = true
		if err := b.Publish(ctx, channelFor(topic, uid), ev); err != nil {
			log.Error(err, "failed to publish change", "topic", topic, "userId", uid)
		}
	}
}

const (
	topicSessions      = "sessions"
	topicNotifications = "notifications"
)

func channelFor(topic, userID string) string {
	return topic + ":" + userID
}

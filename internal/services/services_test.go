package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/harentsoaR/ayursutra-api/internal/messaging"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/store"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 9, 22, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc    *Services
	store  *store.Memory
	broker *messaging.MemoryBroker
	clock  *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  store.NewMemory(),
		broker: messaging.NewMemoryBroker(),
		clock:  newTestClock(),
	}
	f.svc = New(Deps{
		Store:    f.store,
		Broker:   f.broker,
		Now:      f.clock.Now,
		Location: time.UTC,
	})
	t.Cleanup(func() { f.broker.Close() })
	return f
}

func (f *fixture) patient(t *testing.T, uid, name string) *models.PatientProfile {
	t.Helper()
	p := &models.PatientProfile{ProfileBase: models.ProfileBase{UID: uid, Name: name, Email: uid + "@example.com"}}
	require.NoError(t, f.svc.Users.CreateUserIndex(context.Background(), p))
	return p
}

func (f *fixture) practitioner(t *testing.T, uid, name string) *models.PractitionerProfile {
	t.Helper()
	p := &models.PractitionerProfile{ProfileBase: models.ProfileBase{UID: uid, Name: name, Email: uid + "@example.com"}}
	require.NoError(t, f.svc.Users.CreateUserIndex(context.Background(), p))
	return p
}

// failingStore fails writes to one collection.
type failingStore struct {
	store.Store
	collection string
}

var errWriteFailed = errors.New("write failed")

func (s *failingStore) Set(ctx context.Context, collection, id string, doc any) error {
	if collection == s.collection {
		return errWriteFailed
	}
	return s.Store.Set(ctx, collection, id, doc)
}

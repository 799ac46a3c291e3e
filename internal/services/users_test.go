package services

import (
	"context"
	"testing"

	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCreateUserIndexWritesIndexAndProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.patient(t, "p1", "Asha")

	idx, err := f.svc.Users.GetIndex(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.RolePatient, idx.UserType)
	assert.Equal(t, "Asha", idx.Name)
	assert.True(t, f.clock.Now().Equal(idx.CreatedAt))

	profile, err := f.svc.Users.GetUser(ctx, "p1")
	require.NoError(t, err)
	patient, ok := profile.(*models.PatientProfile)
	require.True(t, ok)
	assert.Equal(t, "p1", patient.ID)
	assert.Equal(t, models.RolePatient, patient.UserType)
	assert.Empty(t, patient.AllowedPractitionerIDs)

	_, err = f.svc.Users.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateUserIndexValidates(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Users.CreateUserIndex(context.Background(), &models.PatientProfile{
		ProfileBase: models.ProfileBase{UID: "p1"},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateUserSyncsIndexName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.practitioner(t, "d1", "Dr. Rao")

	require.NoError(t, f.svc.Users.UpdateUser(ctx, "d1", models.Fields{"name": "Dr. Meera Rao", "specialization": "Panchakarma"}))

	idx, err := f.svc.Users.GetIndex(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Meera Rao", idx.Name)

	doc, err := f.svc.Practitioners.GetPractitioner(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Meera Rao", doc.Name)
	assert.Equal(t, "Panchakarma", doc.Specialization)
}

func TestUpdateUserRejectsImmutableFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.patient(t, "p1", "Asha")

	for _, field := range []string{"uid", "userType", "createdAt"} {
		err := f.svc.Users.UpdateUser(ctx, "p1", models.Fields{field: "x"})
		assert.ErrorIs(t, err, ErrImmutableField, field)
	}
	assert.ErrorIs(t, f.svc.Users.UpdateUserByRole(ctx, "p1", "admin", models.Fields{"name": "x"}), ErrInvalidRole)
	assert.ErrorIs(t, f.svc.Patients.UpdatePatient(ctx, "missing", models.Fields{"age": 30}), ErrPatientNotFound)
}

func TestUpdateUserRejectsMistypedFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.patient(t, "p1", "Asha")
	f.patient(t, "p2", "Ravi")
	f.practitioner(t, "d1", "Dr. Rao")
	_, err := f.svc.Patients.AssignPractitioner(ctx, "p1", "d1")
	require.NoError(t, err)

	tests := []struct {
		name    string
		uid     string
		updates models.Fields
	}{
		{"string age", "p1", models.Fields{"age": "forty"}},
		{"scalar allow list", "p1", models.Fields{"allowedPractitionerIds": "x"}},
		{"mixed allow list", "p1", models.Fields{"allowedPractitionerIds": []any{"d1", 7}}},
		{"empty name", "p1", models.Fields{"name": ""}},
		{"practitioner field on a patient", "p1", models.Fields{"specialization": "Panchakarma"}},
		{"undeclared field", "p1", models.Fields{"isAdmin": true}},
		{"scalar expertise", "d1", models.Fields{"expertise": "Nasya"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, f.svc.Users.UpdateUser(ctx, tt.uid, tt.updates), ErrValidation)
		})
	}

	patients, err := f.svc.Users.GetAllPatients(ctx)
	require.NoError(t, err)
	assert.Len(t, patients, 2)
	assigned, err := f.svc.Practitioners.GetAssignedPatients(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Asha", assigned[0].Name)

	require.NoError(t, f.svc.Patients.UpdatePatient(ctx, "p1", models.Fields{"age": float64(40), "dosha": "Vata"}))
	p, err := f.svc.Patients.GetPatient(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 40, p.Age)
	assert.Equal(t, "Vata", p.Dosha)
	assert.Equal(t, []string{"d1"}, p.AllowedPractitionerIDs)
}

func TestGetAllByRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.patient(t, "p1", "Asha")
	f.patient(t, "p2", "Ravi")
	f.practitioner(t, "d1", "Dr. Rao")

	patients, err := f.svc.Users.GetAllPatients(ctx)
	require.NoError(t, err)
	assert.Len(t, patients, 2)

	practitioners, err := f.svc.Users.GetAllPractitioners(ctx)
	require.NoError(t, err)
	require.Len(t, practitioners, 1)
	assert.Equal(t, "d1", practitioners[0].UID)
}

func TestAssignPractitionerOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.patient(t, "p1", "Asha")
	f.practitioner(t, "d1", "Dr. Rao")

	added, err := f.svc.Patients.AssignPractitioner(ctx, "p1", "d1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = f.svc.Patients.AssignPractitioner(ctx, "p1", "d1")
	require.NoError(t, err)
	assert.False(t, added)

	patient, err := f.svc.Patients.GetPatient(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, patient.AllowedPractitionerIDs)

	ok, err := f.svc.Patients.CanAccess(ctx, "p1", "d1")
	require.NoError(t, err)
	assert.True(t, ok)

	assigned, err := f.svc.Practitioners.GetAssignedPatients(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "p1", assigned[0].UID)

	_, err = f.svc.Patients.AssignPractitioner(ctx, "missing", "d1")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestDeactivateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.patient(t, "p1", "Asha")

	require.NoError(t, f.svc.Users.DeactivateUser(ctx, "p1"))

	idx, err := f.svc.Users.GetIndex(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, idx.Deactivated())
	require.NotNil(t, idx.DeletedAt)

	// The profile row stays.
	_, err = f.svc.Patients.GetPatient(ctx, "p1")
	assert.NoError(t, err)
}

func TestResolveProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("index", func(t *testing.T) {
		f := newFixture(t)
		f.practitioner(t, "d1", "Dr. Rao")

		got, err := f.svc.Users.ResolveProfile(ctx, Identity{UID: "d1"})
		require.NoError(t, err)
		assert.Equal(t, SourceIndex, got.Source)
		assert.Equal(t, models.RolePractitioner, got.Profile.Role())
	})

	t.Run("reconciles missing profile row", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Set(ctx, models.CollectionUsers, "d1", models.UserIndex{
			UID: "d1", Name: "Dr. Rao", Email: "rao@example.com", UserType: models.RolePractitioner,
		}))

		got, err := f.svc.Users.ResolveProfile(ctx, Identity{UID: "d1"})
		require.NoError(t, err)
		assert.Equal(t, SourceReconciled, got.Source)
		assert.Equal(t, "Dr. Rao", got.Profile.Base().Name)

		exists, err := f.store.Exists(ctx, models.CollectionPractitioners, "d1")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("checks practitioners before patients", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Set(ctx, models.CollectionPractitioners, "x1", bson.M{"uid": "x1", "name": "Dr. Rao"}))
		require.NoError(t, f.store.Set(ctx, models.CollectionPatients, "x1", bson.M{"uid": "x1", "name": "Asha"}))

		got, err := f.svc.Users.ResolveProfile(ctx, Identity{UID: "x1"})
		require.NoError(t, err)
		assert.Equal(t, SourcePractitioner, got.Source)
	})

	t.Run("finds patient row", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Set(ctx, models.CollectionPatients, "p1", bson.M{"uid": "p1", "name": "Asha"}))

		got, err := f.svc.Users.ResolveProfile(ctx, Identity{UID: "p1"})
		require.NoError(t, err)
		assert.Equal(t, SourcePatient, got.Source)
	})

	t.Run("creates default patient", func(t *testing.T) {
		f := newFixture(t)
		id := Identity{UID: "n1", Email: "nila@example.com"}

		got, err := f.svc.Users.ResolveProfile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, SourceCreated, got.Source)
		assert.Equal(t, "Nila", got.Profile.Base().Name)
		assert.False(t, got.Profile.Base().Temporary)

		again, err := f.svc.Users.ResolveProfile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, SourceIndex, again.Source)
	})

	t.Run("falls back to temporary profile", func(t *testing.T) {
		f := newFixture(t)
		broken := New(Deps{
			Store: &failingStore{Store: f.store, collection: models.CollectionUsers},
			Now:   f.clock.Now,
		})

		got, err := broken.Users.ResolveProfile(ctx, Identity{UID: "t1", DisplayName: "Tara"})
		require.NoError(t, err)
		assert.Equal(t, SourceTemporary, got.Source)
		assert.True(t, got.Profile.Base().Temporary)
		assert.Equal(t, "Tara", got.Profile.Base().Name)
		assert.Equal(t, models.RolePatient, got.Profile.Role())

		var rows []bson.M
		require.NoError(t, f.store.Find(ctx, models.CollectionPatients, store.NewQuery(), &rows))
		assert.Empty(t, rows)
	})

	t.Run("requires uid", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Users.ResolveProfile(ctx, Identity{})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestDefaultDisplayName(t *testing.T) {
	tests := []struct {
		id   Identity
		want string
	}{
		{Identity{DisplayName: "  Asha Kumar "}, "Asha Kumar"},
		{Identity{Email: "ravi.k@example.com"}, "Ravi.k"},
		{Identity{}, "New Patient"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultDisplayName(tt.id))
	}
}

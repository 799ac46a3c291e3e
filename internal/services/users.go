package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/store"
)

// UserService owns the users index and the two role collections. The index
// row names the collection that holds the full profile.
type UserService struct {
	store store.Store
	log   *logger.Logger
	now   func() time.Time
}

// Fields that would break the index/profile pairing if changed after creation.
var immutableProfileFields = []string{"_id", "id", "uid", "userType", "createdAt"}

// Profile fields a user may change, by role.
var profileUpdateFields = map[models.Role]map[string]bool{
	models.RolePatient: fieldSet("name", "phone", "status", "age", "gender", "dosha",
		"medicalHistory", "currentCondition", "assignedTherapy", "allowedPractitionerIds"),
	models.RolePractitioner: fieldSet("name", "phone", "status", "specialization",
		"experience", "qualifications", "expertise"),
}

// CreateUserIndex writes the index row and then the role profile. The two
// writes are not atomic; readers recover from a missing profile row.
func (s *UserService) CreateUserIndex(ctx context.Context, profile models.Profile) error {
	role := profile.Role()
	base := profile.Base()
	if err := validateStruct(base); err != nil {
		return err
	}

	now := s.now()
	base.ID = ""
	base.UserType = role
	base.CreatedAt = now
	base.UpdatedAt = now
	if p, ok := profile.(*models.PatientProfile); ok {
		p.AllowedPractitionerIDs = []string{}
	}

	index := models.UserIndex{
		UID:       base.UID,
		Email:     base.Email,
		Name:      base.Name,
		UserType:  role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Set(ctx, models.CollectionUsers, base.UID, index); err != nil {
		s.log.Error(err, "failed to write user index", "uid", base.UID)
		return fmt.Errorf("create user index: %w", err)
	}
	if err := s.store.Set(ctx, role.Collection(), base.UID, profile); err != nil {
		s.log.Error(err, "failed to write role profile", "uid", base.UID, "role", role)
		return fmt.Errorf("create %s profile: %w", role, err)
	}
	base.ID = base.UID

	s.log.Info("user created", "uid", base.UID, "role", role)
	return nil
}

func (s *UserService) GetIndex(ctx context.Context, uid string) (*models.UserIndex, error) {
	var idx models.UserIndex
	if err := s.store.Get(ctx, models.CollectionUsers, uid, &idx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user index: %w", err)
	}
	return &idx, nil
}

// GetUser resolves the index row and returns the full profile from the role
// collection it names.
func (s *UserService) GetUser(ctx context.Context, uid string) (models.Profile, error) {
	idx, err := s.GetIndex(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.GetUserByRole(ctx, uid, idx.UserType)
}

func (s *UserService) GetUserByRole(ctx context.Context, uid string, role models.Role) (models.Profile, error) {
	profile, ok := models.NewProfile(role)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if err := s.store.Get(ctx, role.Collection(), uid, profile); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get %s profile: %w", role, err)
	}
	return profile, nil
}

// UpdateUser updates the role profile named by the index row.
func (s *UserService) UpdateUser(ctx context.Context, uid string, updates models.Fields) error {
	idx, err := s.GetIndex(ctx, uid)
	if err != nil {
		return err
	}
	return s.UpdateUserByRole(ctx, uid, idx.UserType, updates)
}

// UpdateUserByRole applies updates to the role profile and keeps the index
// name in step when it changes. Updates are checked against the profile type
// before anything is written.
func (s *UserService) UpdateUserByRole(ctx context.Context, uid string, role models.Role, updates models.Fields) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	for _, f := range immutableProfileFields {
		if _, ok := updates[f]; ok {
			return fmt.Errorf("%w: %s", ErrImmutableField, f)
		}
	}

	profile, err := s.GetUserByRole(ctx, uid, role)
	if err != nil {
		return err
	}
	fields, err := applyUpdates(profile, updates, profileUpdateFields[role])
	if err != nil {
		return err
	}
	now := s.now()
	fields["updatedAt"] = now

	if err := s.store.Update(ctx, role.Collection(), uid, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProfileNotFound
		}
		s.log.Error(err, "failed to update profile", "uid", uid, "role", role)
		return fmt.Errorf("update %s profile: %w", role, err)
	}

	if name, ok := fields["name"].(string); ok && name != "" {
		err := s.store.Update(ctx, models.CollectionUsers, uid, models.Fields{"name": name, "updatedAt": now})
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			s.log.Error(err, "failed to sync index name", "uid", uid)
			return fmt.Errorf("update user index: %w", err)
		}
	}
	return nil
}

func (s *UserService) GetAllPatients(ctx context.Context) ([]*models.PatientProfile, error) {
	var patients []*models.PatientProfile
	if err := s.store.Find(ctx, models.CollectionPatients, store.NewQuery().Sort(store.Desc("createdAt")), &patients); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func (s *UserService) GetAllPractitioners(ctx context.Context) ([]*models.PractitionerProfile, error) {
	var practitioners []*models.PractitionerProfile
	if err := s.store.Find(ctx, models.CollectionPractitioners, store.NewQuery().Sort(store.Desc("createdAt")), &practitioners); err != nil {
		return nil, fmt.Errorf("list practitioners: %w", err)
	}
	return practitioners, nil
}

// DeactivateUser tombstones the index row. Profile rows are kept.
func (s *UserService) DeactivateUser(ctx context.Context, uid string) error {
	now := s.now()
	err := s.store.Merge(ctx, models.CollectionUsers, uid, models.Fields{
		"active":    false,
		"deletedAt": now,
		"updatedAt": now,
	})
	if err != nil {
		s.log.Error(err, "failed to deactivate user", "uid", uid)
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}

// Identity is what the auth provider knows about a signed-in user.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

type ProfileSource string

const (
	SourceIndex        ProfileSource = "index"
	SourceReconciled   ProfileSource = "reconciled"
	SourcePractitioner ProfileSource = "practitioners"
	SourcePatient      ProfileSource = "patients"
	SourceCreated      ProfileSource = "created"
	SourceTemporary    ProfileSource = "temporary"
)

type ResolvedProfile struct {
	Profile models.Profile
	Source  ProfileSource
}

// ResolveProfile finds a profile for a signed-in identity, trying in order:
// the index, a profile row the index names but that is missing, a
// practitioner row, a patient row. When nothing exists a default patient
// profile is created. If that write fails the caller gets an unsaved profile
// flagged Temporary rather than an error.
func (s *UserService) ResolveProfile(ctx context.Context, id Identity) (*ResolvedProfile, error) {
	if id.UID == "" {
		return nil, fmt.Errorf("%w: identity has no uid", ErrValidation)
	}

	idx, err := s.GetIndex(ctx, id.UID)
	switch {
	case err == nil:
		profile, err := s.GetUserByRole(ctx, id.UID, idx.UserType)
		if err == nil {
			return &ResolvedProfile{Profile: profile, Source: SourceIndex}, nil
		}
		if !errors.Is(err, ErrProfileNotFound) && !errors.Is(err, ErrInvalidRole) {
			return s.temporary(id, err), nil
		}
		if idx.UserType.Valid() {
			if profile, err := s.reconcile(ctx, idx); err == nil {
				return &ResolvedProfile{Profile: profile, Source: SourceReconciled}, nil
			}
		}
	case !errors.Is(err, ErrUserNotFound):
		return s.temporary(id, err), nil
	}

	for _, role := range []models.Role{models.RolePractitioner, models.RolePatient} {
		profile, err := s.GetUserByRole(ctx, id.UID, role)
		if err == nil {
			source := SourcePatient
			if role == models.RolePractitioner {
				source = SourcePractitioner
			}
			return &ResolvedProfile{Profile: profile, Source: source}, nil
		}
		if !errors.Is(err, ErrProfileNotFound) {
			return s.temporary(id, err), nil
		}
	}

	profile := defaultPatient(id)
	if err := s.CreateUserIndex(ctx, profile); err != nil {
		return s.temporary(id, err), nil
	}
	s.log.Info("created default patient profile", "uid", id.UID)
	return &ResolvedProfile{Profile: profile, Source: SourceCreated}, nil
}

// reconcile writes the missing profile row for an index row left behind by a
// half-finished create.
func (s *UserService) reconcile(ctx context.Context, idx *models.UserIndex) (models.Profile, error) {
	profile, _ := models.NewProfile(idx.UserType)
	base := profile.Base()
	base.UID = idx.UID
	base.Email = idx.Email
	base.Name = idx.Name
	base.UserType = idx.UserType
	base.CreatedAt = idx.CreatedAt
	base.UpdatedAt = s.now()
	if p, ok := profile.(*models.PatientProfile); ok {
		p.AllowedPractitionerIDs = []string{}
	}

	if err := s.store.Set(ctx, idx.UserType.Collection(), idx.UID, profile); err != nil {
		s.log.Error(err, "failed to reconcile profile", "uid", idx.UID)
		return nil, err
	}
	base.ID = idx.UID
	s.log.Warn("reconciled missing profile row", "uid", idx.UID, "role", idx.UserType)
	return profile, nil
}

func (s *UserService) temporary(id Identity, cause error) *ResolvedProfile {
	s.log.Error(cause, "using temporary profile", "uid", id.UID)
	p := defaultPatient(id)
	now := s.now()
	p.UserType = models.RolePatient
	p.CreatedAt = now
	p.UpdatedAt = now
	p.ID = id.UID
	p.AllowedPractitionerIDs = []string{}
	p.Temporary = true
	return &ResolvedProfile{Profile: p, Source: SourceTemporary}
}

func defaultPatient(id Identity) *models.PatientProfile {
	return &models.PatientProfile{
		ProfileBase: models.ProfileBase{
			UID:    id.UID,
			Email:  id.Email,
			Name:   DefaultDisplayName(id),
			Status: "active",
		},
	}
}

// DefaultDisplayName picks the display name, then the capitalised email
// local part, then a placeholder.
func DefaultDisplayName(id Identity) string {
	if name := strings.TrimSpace(id.DisplayName); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(id.Email, "@"); ok && local != "" {
		r := []rune(local)
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	}
	return "New Patient"
}

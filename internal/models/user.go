package models

import "time"

type Role string

const (
	RolePatient      Role = "patient"
	RolePractitioner Role = "practitioner"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RolePractitioner
}

// Collection is the role-specific collection holding full profiles for r.
func (r Role) Collection() string {
	switch r {
	case RolePatient:
		return CollectionPatients
	case RolePractitioner:
		return CollectionPractitioners
	}
	return ""
}

// Fields is a partial document used for updates and merges.
type Fields map[string]any

// UserIndex is the minimal routing row kept in the users collection.
type UserIndex struct {
	UID       string     `bson:"uid" json:"uid"`
	Email     string     `bson:"email" json:"email"`
	Name      string     `bson:"name" json:"name"`
	UserType  Role       `bson:"userType" json:"userType"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
	Active    *bool      `bson:"active,omitempty" json:"active,omitempty"`
	DeletedAt *time.Time `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
}

// Deactivated reports whether the account was soft-deleted.
func (u *UserIndex) Deactivated() bool {
	return u.Active != nil && !*u.Active
}

// Profile is a full user profile: either *PatientProfile or *PractitionerProfile.
type Profile interface {
	Role() Role
	Base() *ProfileBase
	profile()
}

// ProfileBase carries the fields shared by both profile kinds.
type ProfileBase struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UID       string    `bson:"uid" json:"uid" validate:"required"`
	Email     string    `bson:"email" json:"email" validate:"omitempty,email"`
	Name      string    `bson:"name" json:"name" validate:"required"`
	UserType  Role      `bson:"userType" json:"userType"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Status    string    `bson:"status,omitempty" json:"status,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// Temporary marks an in-memory profile that could not be persisted.
	Temporary bool `bson:"-" json:"isTemporary,omitempty"`
}

func (b *ProfileBase) Base() *ProfileBase { return b }
func (b *ProfileBase) profile()           {}

type PatientProfile struct {
	ProfileBase `bson:",inline"`

	Age                    int      `bson:"age,omitempty" json:"age,omitempty"`
	Gender                 string   `bson:"gender,omitempty" json:"gender,omitempty"`
	Dosha                  string   `bson:"dosha,omitempty" json:"dosha,omitempty"` // Vata, Pitta, Kapha or a combination
	MedicalHistory         string   `bson:"medicalHistory,omitempty" json:"medicalHistory,omitempty"`
	CurrentCondition       string   `bson:"currentCondition,omitempty" json:"currentCondition,omitempty"`
	AssignedTherapy        string   `bson:"assignedTherapy,omitempty" json:"assignedTherapy,omitempty"`
	AllowedPractitionerIDs []string `bson:"allowedPractitionerIds" json:"allowedPractitionerIds"`
}

func (p *PatientProfile) Role() Role { return RolePatient }

// Allows reports whether practitionerID has been granted access to this patient.
func (p *PatientProfile) Allows(practitionerID string) bool {
	for _, id := range p.AllowedPractitionerIDs {
		if id == practitionerID {
			return true
		}
	}
	return false
}

type PractitionerProfile struct {
	ProfileBase `bson:",inline"`

	Specialization string   `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Experience     string   `bson:"experience,omitempty" json:"experience,omitempty"`
	Qualifications string   `bson:"qualifications,omitempty" json:"qualifications,omitempty"`
	Expertise      []string `bson:"expertise,omitempty" json:"expertise,omitempty"`
}

func (p *PractitionerProfile) Role() Role { return RolePractitioner }

// NewProfile returns an empty profile of the given role, ready to be decoded into.
func NewProfile(r Role) (Profile, bool) {
	switch r {
	case RolePatient:
		return &PatientProfile{}, true
	case RolePractitioner:
		return &PractitionerProfile{}, true
	}
	return nil, false
}

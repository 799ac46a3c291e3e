package models

import "time"

type SessionStatus string

const (
	SessionPending     SessionStatus = "pending"
	SessionConfirmed   SessionStatus = "confirmed"
	SessionCompleted   SessionStatus = "completed"
	SessionCancelled   SessionStatus = "cancelled"
	SessionRescheduled SessionStatus = "rescheduled"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionPending, SessionConfirmed, SessionCompleted, SessionCancelled, SessionRescheduled:
		return true
	}
	return false
}

// Session is a scheduled therapy appointment between a patient and a practitioner.
type Session struct {
	ID               string        `bson:"_id,omitempty" json:"id"`
	PatientID        string        `bson:"patientId" json:"patientId" validate:"required"`
	PractitionerID   string        `bson:"practitionerId" json:"practitionerId" validate:"required"`
	PatientName      string        `bson:"patientName,omitempty" json:"patientName,omitempty"`
	PractitionerName string        `bson:"practitionerName,omitempty" json:"practitionerName,omitempty"`
	Therapy          string        `bson:"therapy" json:"therapy" validate:"required"`
	Date             SessionDate   `bson:"date" json:"date"`
	Time             string        `bson:"time,omitempty" json:"time,omitempty"` // e.g. "10:00 AM" or "14:30"
	Duration         int           `bson:"duration,omitempty" json:"duration,omitempty" validate:"gte=0"` // minutes
	Location         string        `bson:"location,omitempty" json:"location,omitempty"`
	Status           SessionStatus `bson:"status" json:"status"`
	Notes            string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Preparation      []string      `bson:"preparation,omitempty" json:"preparation,omitempty"`
	CreatedAt        time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Involves reports whether uid is one of the two participants.
func (s *Session) Involves(uid string) bool {
	return uid != "" && (s.PatientID == uid || s.PractitionerID == uid)
}

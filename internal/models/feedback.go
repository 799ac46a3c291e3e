package models

import "time"

// Feedback is a patient's rating of one completed session.
type Feedback struct {
	ID             string            `bson:"_id,omitempty" json:"id"`
	SessionID      string            `bson:"sessionId" json:"sessionId" validate:"required"`
	PatientID      string            `bson:"patientId" json:"patientId" validate:"required"`
	PatientName    string            `bson:"patientName,omitempty" json:"patientName,omitempty"`
	PractitionerID string            `bson:"practitionerId,omitempty" json:"practitionerId,omitempty"`
	Therapy        string            `bson:"therapy,omitempty" json:"therapy,omitempty"`
	Rating         int               `bson:"rating" json:"rating" validate:"min=1,max=5"`
	Mood           string            `bson:"mood,omitempty" json:"mood,omitempty"`
	Energy         int               `bson:"energy,omitempty" json:"energy,omitempty" validate:"min=0,max=10"`
	Comments       string            `bson:"comments,omitempty" json:"comments,omitempty"`
	Symptoms       map[string]string `bson:"symptoms,omitempty" json:"symptoms,omitempty"` // e.g. stress: much_better
	CreatedAt      time.Time         `bson:"createdAt" json:"createdAt"`
}

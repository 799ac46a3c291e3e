package models

import "time"

// PractitionerNote is a clinical note a practitioner keeps about a patient.
type PractitionerNote struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	PractitionerID   string    `bson:"practitionerId" json:"practitionerId" validate:"required"`
	PractitionerName string    `bson:"practitionerName,omitempty" json:"practitionerName,omitempty"`
	PatientID        string    `bson:"patientId" json:"patientId" validate:"required"`
	PatientName      string    `bson:"patientName,omitempty" json:"patientName,omitempty"`
	SessionType      string    `bson:"sessionType,omitempty" json:"sessionType,omitempty"`
	NoteType         string    `bson:"noteType,omitempty" json:"noteType,omitempty"`
	Title            string    `bson:"title" json:"title" validate:"required"`
	Content          string    `bson:"content" json:"content"`
	Tags             []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}

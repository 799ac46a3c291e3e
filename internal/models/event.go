package models

import "time"

type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent is published on a user's channel whenever a row they watch changes.
type ChangeEvent struct {
	Collection string     `json:"collection"`
	ID         string     `json:"id"`
	Kind       ChangeKind `json:"kind"`
	At         time.Time  `json:"at"`
}

// MigrationRun records one execution of a data migration.
type MigrationRun struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	Version       string    `bson:"version" json:"version"`
	MigratedCount int       `bson:"migratedCount" json:"migratedCount"`
	Skipped       []string  `bson:"skipped,omitempty" json:"skipped,omitempty"`
	RanAt         time.Time `bson:"ranAt" json:"ranAt"`
}

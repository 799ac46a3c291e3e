package models

import "time"

type NotificationType string

const (
	NotificationPreparation NotificationType = "preparation"
	NotificationReminder    NotificationType = "reminder"
	NotificationSchedule    NotificationType = "schedule"
	NotificationProgress    NotificationType = "progress"
	NotificationSystem      NotificationType = "system"
	NotificationUrgent      NotificationType = "urgent"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Notification is a one-way, per-user message. Read only ever goes false to true.
type Notification struct {
	ID        string           `bson:"_id,omitempty" json:"id"`
	UserID    string           `bson:"userId" json:"userId" validate:"required"`
	Type      NotificationType `bson:"type" json:"type" validate:"omitempty,oneof=preparation reminder schedule progress system urgent"`
	Title     string           `bson:"title" json:"title" validate:"required"`
	Message   string           `bson:"message" json:"message"`
	Priority  Priority         `bson:"priority" json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Read      bool             `bson:"read" json:"read"`
	ReadAt    *time.Time       `bson:"readAt,omitempty" json:"readAt,omitempty"`
	SessionID string           `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
}

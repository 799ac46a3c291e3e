package models

// Document store collections.
const (
	CollectionUsers         = "users"
	CollectionPatients      = "patients"
	CollectionPractitioners = "practitioners"
	CollectionAccounts      = "accounts"
	CollectionSessions      = "sessions"
	CollectionNotifications = "notifications"
	CollectionFeedback      = "feedback"
	CollectionNotes         = "practitionerNotes"
	CollectionProgress      = "progress"
	CollectionMessages      = "messages"
	CollectionMigrations    = "migrations"

	// Reserved, no service reads or writes them yet.
	CollectionRecipes   = "recipes"
	CollectionAnalytics = "analytics"
)

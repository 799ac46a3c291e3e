package models

import "time"

// Account holds login credentials. It lives apart from the profile rows so
// profile reads never carry the password hash.
type Account struct {
	UID          string    `bson:"uid" json:"uid"`
	Email        string    `bson:"email" json:"email"`
	DisplayName  string    `bson:"displayName,omitempty" json:"displayName,omitempty"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

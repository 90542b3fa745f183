package models

import "time"

// DefaultRole is assigned to new accounts registered without an explicit role.
const DefaultRole = "user"

// User is an account record as stored in the users table.
// HashedPassword is opaque and never leaves the service layer.
//
// Email is optional; the empty string means "no email on file". Uniqueness is
// only enforced for non-empty emails.
type User struct {
	ID             int64
	Username       string
	Email          string
	FullName       string
	HashedPassword string
	Disabled       bool
	Role           string
	CreatedAt      time.Time
}

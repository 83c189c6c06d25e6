package entity

import (
	"time"
)

// DefaultProfileImage is used until the user gets a picture from Google
// or uploads one of their own.
const DefaultProfileImage = "https://upload.wikimedia.org/wikipedia/commons/2/2c/Default_pfp.svg"

// User is the aggregate root for the user domain.
// PasswordHash holds a bcrypt hash and is empty for Google-only accounts.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	GoogleID     string
	ImageURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOAuthOnly reports whether the account has no local credentials.
func (u *User) IsOAuthOnly() bool {
	return u.PasswordHash == "" && u.GoogleID != ""
}

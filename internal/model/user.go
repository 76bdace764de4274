package model

import (
	"time"

	"github.com/lib/pq"
)

// User represents a user in the system.
// Followers and Following are the two halves of one symmetric relation and are
// only ever changed together by the follow/unfollow repository methods.
type User struct {
	ID             int64         `db:"id" json:"id"`
	Username       string        `db:"username" json:"username"`
	Email          string        `db:"email" json:"email"`
	PasswordHashed string        `db:"password_hashed" json:"-"` // "-" hides from JSON output
	AvatarURL      string        `db:"avatar_url" json:"avatar_url"`
	AvatarKey      *string       `db:"avatar_key" json:"-"`
	Followers      pq.Int64Array `db:"followers" json:"followers"`
	Following      pq.Int64Array `db:"following" json:"following"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// Summary projects the user to its lightweight display form.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	AvatarURL string  `json:"-"`
	AvatarKey *string `json:"-"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// Error codes specific to accounts
const (
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = newError(KindNotFound, CodeNotFound, "user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = newError(KindConflict, CodeUsernameExists, "username already exists")

	// ErrEmailExists is returned when attempting to create a user with a taken email
	ErrEmailExists = newError(KindConflict, CodeEmailExists, "user already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = newError(KindAuth, CodeInvalidCredentials, "invalid email or password")

	ErrUsernameRequired = newError(KindValidation, CodeBadRequest, "username is required")
	ErrEmailRequired    = newError(KindValidation, CodeBadRequest, "email is required")
	ErrPasswordRequired = newError(KindValidation, CodeBadRequest, "password is required")
	ErrPasswordTooShort = newError(KindValidation, CodeBadRequest, "password must be at least 6 characters long")
	ErrAvatarRequired   = newError(KindValidation, CodeBadRequest, "profile image is required")
)

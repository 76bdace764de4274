package model

import "time"

// UserSummary is the lightweight projection of a user used wherever another
// entity references one (followers, post authors, comment authors).
type UserSummary struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	AvatarURL string `db:"avatar_url" json:"avatar_url"`
}

// Profile is a user without credentials, with both sides of the follow
// relation resolved to summaries.
type Profile struct {
	ID        int64         `json:"id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	AvatarURL string        `json:"avatar_url"`
	Followers []UserSummary `json:"followers"`
	Following []UserSummary `json:"following"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Error codes for follow conflicts
const (
	CodeCannotFollowSelf = "CANNOT_FOLLOW_SELF"
	CodeAlreadyFollowing = "ALREADY_FOLLOWING"
	CodeNotFollowing     = "NOT_FOLLOWING"
)

var (
	ErrAlreadyFollowing = newError(KindConflict, CodeAlreadyFollowing, "you are already following this user")
	ErrNotFollowing     = newError(KindConflict, CodeNotFollowing, "you are not following this user")
	ErrCannotFollowSelf = newError(KindConflict, CodeCannotFollowSelf, "you cannot follow yourself")
)

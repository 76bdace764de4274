package model

import "time"

// Comment represents a comment on a post.
type Comment struct {
	ID        int64        `db:"id" json:"id"`
	PostID    int64        `db:"post_id" json:"post_id"`
	UserID    int64        `db:"user_id" json:"user_id"`
	Text      string       `db:"text" json:"text"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"` // Joined field
}

// AddCommentRequest is the request body for commenting on a post.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// Comment constraints
const (
	MaxCommentLength = 2200 // Same as Instagram caption limit
)

// Comment errors
var (
	ErrCommentTextRequired = newError(KindValidation, CodeBadRequest, "comment text is required")
	ErrCommentTooLong      = newError(KindValidation, CodeBadRequest, "comment text too long")
)

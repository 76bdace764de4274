package model

import (
	"time"

	"github.com/lib/pq"
)

// Post represents a user's post with its metadata.
type Post struct {
	ID        int64         `db:"id" json:"id"`
	UserID    int64         `db:"user_id" json:"user_id"`
	Text      string        `db:"text" json:"text"`
	ImageURL  string        `db:"image_url" json:"image_url"`
	ImageKey  *string       `db:"image_key" json:"-"`
	Likes     pq.Int64Array `db:"likes" json:"likes"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`

	// Joined fields (not in posts table)
	Author   *UserSummary `json:"author,omitempty"`
	Comments []Comment    `json:"comments"`
}

// LikesCount is the number of distinct users who like the post.
func (p *Post) LikesCount() int {
	return len(p.Likes)
}

// CreatePostRequest carries a validated, already-uploaded image.
type CreatePostRequest struct {
	Text     string
	ImageURL string
	ImageKey *string
}

// UpdatePostRequest holds the fields to replace. Nil fields are preserved.
type UpdatePostRequest struct {
	Text     *string `json:"text"`
	ImageURL *string `json:"-"`
	ImageKey *string `json:"-"`
}

// IsEmpty reports whether the request changes nothing.
func (r UpdatePostRequest) IsEmpty() bool {
	return r.Text == nil && r.ImageURL == nil
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int   `json:"likesCount"`
	Post       *Post `json:"post"`
}

// Post constraints
const (
	MaxPostTextLength = 2200 // Instagram's limit
	PostMediaFolder   = "posts"
)

// Post errors
var (
	ErrPostNotFound  = newError(KindNotFound, CodeNotFound, "post not found")
	ErrNotPostOwner  = newError(KindForbidden, CodeForbidden, "you are not authorized to modify this post")
	ErrTextRequired  = newError(KindValidation, CodeBadRequest, "post text is required")
	ErrTextTooLong   = newError(KindValidation, CodeBadRequest, "post text too long")
	ErrMediaRequired = newError(KindValidation, CodeBadRequest, "image is required for the post")
)

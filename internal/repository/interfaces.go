package repository

import (
	"context"

	"snapshare/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// GetSummaries resolves ids to summaries, preserving the order of ids.
	// Unknown ids are skipped.
	GetSummaries(ctx context.Context, ids []int64) ([]model.UserSummary, error)
	ListSummaries(ctx context.Context) ([]model.UserSummary, error)
	// Follow and Unfollow update both sides of the relation atomically.
	Follow(ctx context.Context, followerID, followeeID int64) error
	Unfollow(ctx context.Context, followerID, followeeID int64) error
}

type PostRepository interface {
	Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error)
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Post, error)
	// Update and Delete only touch rows owned by userID.
	Update(ctx context.Context, postID, userID int64, req model.UpdatePostRequest) (*model.Post, error)
	Delete(ctx context.Context, postID, userID int64) error
	// ToggleLike flips userID's membership in the post's likes. It returns the
	// post as written by this toggle and whether the user now likes it.
	ToggleLike(ctx context.Context, postID, userID int64) (post *model.Post, liked bool, err error)
	// AppendComment also returns the id of the post's author.
	AppendComment(ctx context.Context, postID, userID int64, text string) (comment *model.Comment, postAuthorID int64, err error)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"snapshare/internal/model"
)

const postSelect = `
	SELECT p.id, p.user_id, p.text, p.image_url, p.image_key, p.likes, p.created_at, p.updated_at,
	       u.username AS author_username, u.avatar_url AS author_avatar_url
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

type postRow struct {
	model.Post
	AuthorUsername  string `db:"author_username"`
	AuthorAvatarURL string `db:"author_avatar_url"`
}

func (row postRow) toPost() model.Post {
	p := row.Post
	p.Author = &model.UserSummary{ID: p.UserID, Username: row.AuthorUsername, AvatarURL: row.AuthorAvatarURL}
	if p.Likes == nil {
		p.Likes = pq.Int64Array{}
	}
	p.Comments = []model.Comment{}
	return p
}

type commentRow struct {
	model.Comment
	AuthorUsername  string `db:"author_username"`
	AuthorAvatarURL string `db:"author_avatar_url"`
}

func (row commentRow) toComment() model.Comment {
	c := row.Comment
	c.Author = &model.UserSummary{ID: c.UserID, Username: row.AuthorUsername, AvatarURL: row.AuthorAvatarURL}
	return c
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post and returns it with its author resolved.
func (r *postRepository) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error) {
	var postID int64
	query := `
		INSERT INTO posts (user_id, text, image_url, image_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if err := r.db.GetContext(ctx, &postID, query, userID, req.Text, req.ImageURL, req.ImageKey); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	return r.GetByID(ctx, postID)
}

// GetByID retrieves a single post with its author, likes and comments.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	var row postRow
	err := r.db.GetContext(ctx, &row, postSelect+` WHERE p.id = $1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	posts, err := r.hydrate(ctx, []postRow{row})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// List returns every post, newest first.
func (r *postRepository) List(ctx context.Context) ([]model.Post, error) {
	var rows []postRow
	err := r.db.SelectContext(ctx, &rows, postSelect+` ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return r.hydrate(ctx, rows)
}

// ListByUser returns the posts authored by userID, newest first.
func (r *postRepository) ListByUser(ctx context.Context, userID int64) ([]model.Post, error) {
	var rows []postRow
	err := r.db.SelectContext(ctx, &rows, postSelect+` WHERE p.user_id = $1 ORDER BY p.created_at DESC, p.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user posts: %w", err)
	}
	return r.hydrate(ctx, rows)
}

// Update replaces the provided fields of a post owned by userID.
func (r *postRepository) Update(ctx context.Context, postID, userID int64, req model.UpdatePostRequest) (*model.Post, error) {
	query := `
		UPDATE posts SET
			text = COALESCE($3, text),
			image_url = COALESCE($4, image_url),
			image_key = CASE WHEN $4::text IS NULL THEN image_key ELSE $5 END,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, postID, userID, req.Text, req.ImageURL, req.ImageKey)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	if err := r.checkOwnedRow(ctx, result, postID); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, postID)
}

// Delete removes a post owned by userID. Comments go with it (ON DELETE CASCADE).
func (r *postRepository) Delete(ctx context.Context, postID, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return r.checkOwnedRow(ctx, result, postID)
}

// checkOwnedRow turns a zero-row owner-guarded write into the right error.
func (r *postRepository) checkOwnedRow(ctx context.Context, result sql.Result, postID int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// Check if post exists but belongs to different user
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID); err != nil {
		return fmt.Errorf("check post existence: %w", err)
	}
	if exists {
		return model.ErrNotPostOwner
	}
	return model.ErrPostNotFound
}

// ToggleLike flips membership in a single statement; the row lock taken by
// UPDATE serialises concurrent toggles on the same post. The returned likes
// are the ones this statement wrote.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID int64) (*model.Post, bool, error) {
	query := `
		WITH toggled AS (
			UPDATE posts SET likes = CASE
				WHEN $2 = ANY(likes) THEN array_remove(likes, $2)
				ELSE array_append(likes, $2)
			END
			WHERE id = $1
			RETURNING id, user_id, text, image_url, image_key, likes, created_at, updated_at
		)
		SELECT p.id, p.user_id, p.text, p.image_url, p.image_key, p.likes, p.created_at, p.updated_at,
		       u.username AS author_username, u.avatar_url AS author_avatar_url
		FROM toggled p
		JOIN users u ON u.id = p.user_id
	`
	var row postRow
	err := r.db.GetContext(ctx, &row, query, postID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, model.ErrPostNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("toggle like: %w", err)
	}

	posts, err := r.hydrate(ctx, []postRow{row})
	if err != nil {
		return nil, false, err
	}
	post := &posts[0]
	return post, lo.Contains(post.Likes, userID), nil
}

// AppendComment locks the post row before inserting so comments on one post
// are ordered by commit.
func (r *postRepository) AppendComment(ctx context.Context, postID, userID int64, text string) (*model.Comment, int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var authorID int64
	err = tx.GetContext(ctx, &authorID, `SELECT user_id FROM posts WHERE id = $1 FOR UPDATE`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, model.ErrPostNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("lock post: %w", err)
	}

	var c model.Comment
	err = tx.GetContext(ctx, &c, `
		INSERT INTO post_comments (post_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, user_id, text, created_at
	`, postID, userID, text)
	if err != nil {
		return nil, 0, fmt.Errorf("insert comment: %w", err)
	}

	var author model.UserSummary
	err = tx.GetContext(ctx, &author, `SELECT id, username, avatar_url FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, model.ErrUserNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("get comment author: %w", err)
	}
	c.Author = &author

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit transaction: %w", err)
	}
	return &c, authorID, nil
}

// hydrate converts rows to posts and attaches their comments in one query.
func (r *postRepository) hydrate(ctx context.Context, rows []postRow) ([]model.Post, error) {
	posts := lo.Map(rows, func(row postRow, _ int) model.Post { return row.toPost() })
	if len(posts) == 0 {
		return posts, nil
	}

	postIDs := lo.Map(posts, func(p model.Post, _ int) int64 { return p.ID })
	query := `
		SELECT c.id, c.post_id, c.user_id, c.text, c.created_at,
		       u.username AS author_username, u.avatar_url AS author_avatar_url
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.post_id, c.id
	`
	var commentRows []commentRow
	if err := r.db.SelectContext(ctx, &commentRows, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("get post comments: %w", err)
	}

	byPost := lo.GroupBy(commentRows, func(c commentRow) int64 { return c.PostID })
	for i := range posts {
		if cs, ok := byPost[posts[i].ID]; ok {
			posts[i].Comments = lo.Map(cs, func(c commentRow, _ int) model.Comment { return c.toComment() })
		}
	}
	return posts, nil
}

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

const userColumns = `id, username, email, password_hashed, avatar_url, avatar_key, followers, following, created_at, updated_at`

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (username, email, password_hashed, avatar_url, avatar_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, followers, following, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHashed,
		u.AvatarURL,
		u.AvatarKey,
	)

	err := row.Scan(
		&u.ID,
		&u.Followers,
		&u.Following,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			if constraint == "users_username_key" {
				return model.ErrUsernameExists
			}
			return model.ErrEmailExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves a user by their email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &u, nil
}

// ExistsByUsername checks if a username is already taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// ExistsByEmail checks if an email is already registered
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

func (r *userRepository) GetSummaries(ctx context.Context, ids []int64) ([]model.UserSummary, error) {
	if len(ids) == 0 {
		return []model.UserSummary{}, nil
	}

	query := `SELECT id, username, avatar_url FROM users WHERE id = ANY($1)`

	var rows []model.UserSummary
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get user summaries: %w", err)
	}

	// Re-order to match input order
	byID := lo.KeyBy(rows, func(s model.UserSummary) int64 { return s.ID })
	ordered := make([]model.UserSummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

func (r *userRepository) ListSummaries(ctx context.Context) ([]model.UserSummary, error) {
	query := `SELECT id, username, avatar_url FROM users ORDER BY created_at DESC, id DESC`

	users := []model.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

type graphRow struct {
	ID        int64         `db:"id"`
	Followers pq.Int64Array `db:"followers"`
	Following pq.Int64Array `db:"following"`
}

// lockPair locks both user rows in ascending id order so concurrent
// follow/unfollow calls on the same pair cannot deadlock.
func lockPair(ctx context.Context, tx *sqlx.Tx, a, b int64) (map[int64]graphRow, error) {
	query := `SELECT id, followers, following FROM users WHERE id = $1 FOR UPDATE`

	rows := make(map[int64]graphRow, 2)
	for _, id := range []int64{min(a, b), max(a, b)} {
		var row graphRow
		if err := tx.GetContext(ctx, &row, query, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, model.ErrUserNotFound
			}
			return nil, fmt.Errorf("lock user %d: %w", id, err)
		}
		rows[id] = row
	}
	return rows, nil
}

func (r *userRepository) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := lockPair(ctx, tx, followerID, followeeID)
	if err != nil {
		return err
	}
	if lo.Contains(rows[followerID].Following, followeeID) {
		return model.ErrAlreadyFollowing
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET following = array_append(following, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(following))
	`, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("add following: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET followers = array_append(followers, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(followers))
	`, followeeID, followerID)
	if err != nil {
		return fmt.Errorf("add follower: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *userRepository) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := lockPair(ctx, tx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !lo.Contains(rows[followerID].Following, followeeID) {
		return model.ErrNotFollowing
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET following = array_remove(following, $2), updated_at = NOW()
		WHERE id = $1
	`, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("remove following: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET followers = array_remove(followers, $2), updated_at = NOW()
		WHERE id = $1
	`, followeeID, followerID)
	if err != nil {
		return fmt.Errorf("remove follower: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

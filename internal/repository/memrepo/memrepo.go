// Package memrepo is an in-memory implementation of the repository
// interfaces. It backs service and router tests.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/samber/lo"

	"snapshare/internal/model"
	"snapshare/internal/repository"
)

// Store holds users, posts and comments behind one mutex.
type Store struct {
	mu sync.RWMutex

	users    map[int64]*model.User
	posts    map[int64]*model.Post
	comments map[int64][]model.Comment

	nextUserID    int64
	nextPostID    int64
	nextCommentID int64

	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[int64]*model.User),
		posts:    make(map[int64]*model.Post),
		comments: make(map[int64][]model.Comment),
		now:      time.Now,
	}
}

// SetClock overrides the time source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Users returns the store as a UserRepository.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Posts returns the store as a PostRepository.
func (s *Store) Posts() repository.PostRepository { return postRepo{s} }

type userRepo struct{ s *Store }

type postRepo struct{ s *Store }

func cloneUser(u *model.User) *model.User {
	cp := *u
	cp.Followers = append(pq.Int64Array{}, u.Followers...)
	cp.Following = append(pq.Int64Array{}, u.Following...)
	return &cp
}

func (r userRepo) Create(ctx context.Context, u *model.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return model.ErrUsernameExists
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return model.ErrEmailExists
		}
	}

	s.nextUserID++
	now := s.now()
	u.ID = s.nextUserID
	u.Followers = pq.Int64Array{}
	u.Following = pq.Int64Array{}
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = cloneUser(u)
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r userRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := lo.Find(lo.Values(r.s.users), func(u *model.User) bool { return u.Username == username })
	return ok, nil
}

func (r userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := lo.Find(lo.Values(r.s.users), func(u *model.User) bool { return u.Email == email })
	return ok, nil
}

func (r userRepo) GetSummaries(ctx context.Context, ids []int64) ([]model.UserSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]model.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u.Summary())
		}
	}
	return out, nil
}

func (r userRepo) ListSummaries(ctx context.Context) ([]model.UserSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := lo.Values(r.s.users)
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].ID > users[j].ID
	})
	return lo.Map(users, func(u *model.User, _ int) model.UserSummary { return u.Summary() }), nil
}

func (r userRepo) pair(followerID, followeeID int64) (*model.User, *model.User, error) {
	if followerID == followeeID {
		return nil, nil, model.ErrCannotFollowSelf
	}
	follower, ok := r.s.users[followerID]
	if !ok {
		return nil, nil, model.ErrUserNotFound
	}
	followee, ok := r.s.users[followeeID]
	if !ok {
		return nil, nil, model.ErrUserNotFound
	}
	return follower, followee, nil
}

func (r userRepo) Follow(ctx context.Context, followerID, followeeID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	follower, followee, err := r.pair(followerID, followeeID)
	if err != nil {
		return err
	}
	if lo.Contains(follower.Following, followeeID) {
		return model.ErrAlreadyFollowing
	}

	now := r.s.now()
	follower.Following = append(follower.Following, followeeID)
	follower.UpdatedAt = now
	if !lo.Contains(followee.Followers, followerID) {
		followee.Followers = append(followee.Followers, followerID)
	}
	followee.UpdatedAt = now
	return nil
}

func (r userRepo) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	follower, followee, err := r.pair(followerID, followeeID)
	if err != nil {
		return err
	}
	if !lo.Contains(follower.Following, followeeID) {
		return model.ErrNotFollowing
	}

	now := r.s.now()
	follower.Following = lo.Without(follower.Following, followeeID)
	follower.UpdatedAt = now
	followee.Followers = lo.Without(followee.Followers, followerID)
	followee.UpdatedAt = now
	return nil
}

// hydrate copies a stored post and resolves its author and comments.
// Caller holds the lock.
func (s *Store) hydrate(p *model.Post) model.Post {
	cp := *p
	cp.Likes = append(pq.Int64Array{}, p.Likes...)
	if u, ok := s.users[p.UserID]; ok {
		author := u.Summary()
		cp.Author = &author
	}
	cp.Comments = make([]model.Comment, 0, len(s.comments[p.ID]))
	for _, c := range s.comments[p.ID] {
		if u, ok := s.users[c.UserID]; ok {
			author := u.Summary()
			c.Author = &author
		}
		cp.Comments = append(cp.Comments, c)
	}
	return cp
}

func (s *Store) sortedPosts(filter func(*model.Post) bool) []model.Post {
	posts := lo.Filter(lo.Values(s.posts), func(p *model.Post, _ int) bool { return filter(p) })
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return lo.Map(posts, func(p *model.Post, _ int) model.Post { return s.hydrate(p) })
}

func (r postRepo) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return nil, model.ErrUserNotFound
	}

	s.nextPostID++
	now := s.now()
	p := &model.Post{
		ID:        s.nextPostID,
		UserID:    userID,
		Text:      req.Text,
		ImageURL:  req.ImageURL,
		ImageKey:  req.ImageKey,
		Likes:     pq.Int64Array{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.posts[p.ID] = p

	out := s.hydrate(p)
	return &out, nil
}

func (r postRepo) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	out := r.s.hydrate(p)
	return &out, nil
}

func (r postRepo) List(ctx context.Context) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.sortedPosts(func(*model.Post) bool { return true }), nil
}

func (r postRepo) ListByUser(ctx context.Context, userID int64) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.sortedPosts(func(p *model.Post) bool { return p.UserID == userID }), nil
}

func (r postRepo) owned(postID, userID int64) (*model.Post, error) {
	p, ok := r.s.posts[postID]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	if p.UserID != userID {
		return nil, model.ErrNotPostOwner
	}
	return p, nil
}

func (r postRepo) Update(ctx context.Context, postID, userID int64, req model.UpdatePostRequest) (*model.Post, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := r.owned(postID, userID)
	if err != nil {
		return nil, err
	}
	if req.Text != nil {
		p.Text = *req.Text
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
		p.ImageKey = req.ImageKey
	}
	p.UpdatedAt = s.now()

	out := s.hydrate(p)
	return &out, nil
}

func (r postRepo) Delete(ctx context.Context, postID, userID int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := r.owned(postID, userID); err != nil {
		return err
	}
	delete(s.posts, postID)
	delete(s.comments, postID)
	return nil
}

func (r postRepo) ToggleLike(ctx context.Context, postID, userID int64) (*model.Post, bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil, false, model.ErrPostNotFound
	}
	liked := !lo.Contains(p.Likes, userID)
	if liked {
		p.Likes = append(p.Likes, userID)
	} else {
		p.Likes = lo.Without(p.Likes, userID)
	}

	out := s.hydrate(p)
	return &out, liked, nil
}

func (r postRepo) AppendComment(ctx context.Context, postID, userID int64, text string) (*model.Comment, int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil, 0, model.ErrPostNotFound
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, 0, model.ErrUserNotFound
	}

	s.nextCommentID++
	c := model.Comment{
		ID:        s.nextCommentID,
		PostID:    postID,
		UserID:    userID,
		Text:      text,
		CreatedAt: s.now(),
	}
	s.comments[postID] = append(s.comments[postID], c)

	author := u.Summary()
	c.Author = &author
	return &c, p.UserID, nil
}

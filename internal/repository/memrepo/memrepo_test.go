package memrepo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapshare/internal/model"
)

func seedUsers(t *testing.T, s *Store, names ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(names))
	for _, n := range names {
		u := &model.User{Username: n, Email: n + "@example.com"}
		require.NoError(t, s.Users().Create(context.Background(), u))
		ids = append(ids, u.ID)
	}
	return ids
}

func TestStore_CreateUser_Duplicates(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUsers(t, s, "alice")

	err := s.Users().Create(ctx, &model.User{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, model.ErrUsernameExists)

	err = s.Users().Create(ctx, &model.User{Username: "alice2", Email: "alice@example.com"})
	assert.ErrorIs(t, err, model.ErrEmailExists)
}

func TestStore_ConcurrentFollowKeepsSymmetry(t *testing.T) {
	s := New()
	ctx := context.Background()
	ids := seedUsers(t, s, "a", "b", "c", "d")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, from := range ids {
			for _, to := range ids {
				wg.Add(1)
				go func(from, to int64, follow bool) {
					defer wg.Done()
					if follow {
						_ = s.Users().Follow(ctx, from, to)
					} else {
						_ = s.Users().Unfollow(ctx, from, to)
					}
				}(from, to, i%2 == 0)
			}
		}
	}
	wg.Wait()

	for _, a := range ids {
		ua, err := s.Users().GetByID(ctx, a)
		require.NoError(t, err)
		assert.NotContains(t, ua.Following, a)
		assert.NotContains(t, ua.Followers, a)
		for _, b := range ua.Following {
			ub, err := s.Users().GetByID(ctx, b)
			require.NoError(t, err)
			assert.Contains(t, ub.Followers, a)
		}
		for _, b := range ua.Followers {
			ub, err := s.Users().GetByID(ctx, b)
			require.NoError(t, err)
			assert.Contains(t, ub.Following, a)
		}
	}
}

func TestStore_ConcurrentToggleLike(t *testing.T) {
	s := New()
	ctx := context.Background()
	ids := seedUsers(t, s, "author", "u1", "u2", "u3")

	post, err := s.Posts().Create(ctx, ids[0], model.CreatePostRequest{Text: "hi", ImageURL: "img"})
	require.NoError(t, err)

	// each user toggles an odd number of times, so everyone ends up liking
	var wg sync.WaitGroup
	for _, uid := range ids[1:] {
		for i := 0; i < 7; i++ {
			wg.Add(1)
			go func(uid int64) {
				defer wg.Done()
				_, _, _ = s.Posts().ToggleLike(ctx, post.ID, uid)
			}(uid)
		}
	}
	wg.Wait()

	got, err := s.Posts().GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids[1:], []int64(got.Likes))
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	ids := seedUsers(t, s, "a", "b")

	p1, _ := s.Posts().Create(ctx, ids[0], model.CreatePostRequest{Text: "1", ImageURL: "x"})
	p2, _ := s.Posts().Create(ctx, ids[1], model.CreatePostRequest{Text: "2", ImageURL: "x"})
	p3, _ := s.Posts().Create(ctx, ids[0], model.CreatePostRequest{Text: "3", ImageURL: "x"})

	all, err := s.Posts().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{p3.ID, p2.ID, p1.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	mine, err := s.Posts().ListByUser(ctx, ids[0])
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, p3.ID, mine[0].ID)
	assert.Equal(t, p1.ID, mine[1].ID)
}

func TestStore_DeleteRemovesComments(t *testing.T) {
	s := New()
	ctx := context.Background()
	ids := seedUsers(t, s, "a", "b")

	p, _ := s.Posts().Create(ctx, ids[0], model.CreatePostRequest{Text: "1", ImageURL: "x"})
	_, authorID, err := s.Posts().AppendComment(ctx, p.ID, ids[1], "hey")
	require.NoError(t, err)
	assert.Equal(t, ids[0], authorID)

	assert.ErrorIs(t, s.Posts().Delete(ctx, p.ID, ids[1]), model.ErrNotPostOwner)
	require.NoError(t, s.Posts().Delete(ctx, p.ID, ids[0]))

	_, err = s.Posts().GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, model.ErrPostNotFound)
	_, _, err = s.Posts().AppendComment(ctx, p.ID, ids[1], "again")
	assert.ErrorIs(t, err, model.ErrPostNotFound)
}

func TestStore_ToggleLikeReturnsSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()
	ids := seedUsers(t, s, "author", "u1", "u2")

	post, err := s.Posts().Create(ctx, ids[0], model.CreatePostRequest{Text: "hi", ImageURL: "img"})
	require.NoError(t, err)

	first, liked, err := s.Posts().ToggleLike(ctx, post.ID, ids[1])
	require.NoError(t, err)
	assert.True(t, liked)

	_, _, err = s.Posts().ToggleLike(ctx, post.ID, ids[2])
	require.NoError(t, err)

	// later toggles do not leak into an earlier result
	assert.Equal(t, []int64{ids[1]}, []int64(first.Likes))
	assert.Equal(t, "author", first.Author.Username)
}

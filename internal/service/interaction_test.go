package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapshare/internal/model"
	"snapshare/internal/queue"
	"snapshare/internal/repository"
)

func TestInteractionService_ToggleLikeIsInvolution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")
	post := env.createPost(t, alice.ID, "hello")

	_, err := env.interactions.ToggleLike(ctx, carol.ID, post.ID)
	require.NoError(t, err)

	first, err := env.interactions.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, 2, first.LikesCount)
	assert.Contains(t, first.Post.Likes, bob.ID)

	second, err := env.interactions.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Equal(t, 1, second.LikesCount)
	assert.Equal(t, []int64{carol.ID}, []int64(second.Post.Likes))

	assert.Equal(t, []string{
		queue.EventPostCreated,
		queue.EventPostLiked,
		queue.EventPostLiked,
		queue.EventPostUnliked,
	}, env.publisher.types())
}

func TestInteractionService_ToggleLike_MissingPost(t *testing.T) {
	env := newTestEnv(t)
	bob := env.register(t, "bob")

	_, err := env.interactions.ToggleLike(context.Background(), bob.ID, 404)
	assert.ErrorIs(t, err, model.ErrPostNotFound)
	assert.Equal(t, model.KindNotFound, model.KindOf(err))
}

func TestInteractionService_AddCommentIsMonotonic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	post := env.createPost(t, alice.ID, "hello")

	for i, text := range []string{"first", "  second  ", "third"} {
		before, err := env.posts.GetByID(ctx, post.ID)
		require.NoError(t, err)

		comment, err := env.interactions.AddComment(ctx, bob.ID, post.ID, text)
		require.NoError(t, err)
		assert.Equal(t, strings.TrimSpace(text), comment.Text)
		require.NotNil(t, comment.Author)
		assert.Equal(t, "bob", comment.Author.Username)

		after, err := env.posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, after.Comments, len(before.Comments)+1, "iteration %d", i)
		last := after.Comments[len(after.Comments)-1]
		assert.Equal(t, comment.ID, last.ID)
		assert.Equal(t, bob.ID, last.UserID)
		assert.Equal(t, strings.TrimSpace(text), last.Text)
	}
}

func TestInteractionService_AddComment_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	post := env.createPost(t, alice.ID, "hello")

	_, err := env.interactions.AddComment(ctx, alice.ID, post.ID, "   ")
	assert.ErrorIs(t, err, model.ErrCommentTextRequired)

	_, err = env.interactions.AddComment(ctx, alice.ID, post.ID, strings.Repeat("x", model.MaxCommentLength+1))
	assert.ErrorIs(t, err, model.ErrCommentTooLong)

	_, err = env.interactions.AddComment(ctx, alice.ID, 404, "hi")
	assert.ErrorIs(t, err, model.ErrPostNotFound)

	got, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
}

func TestInteractionService_ConcurrentComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	post := env.createPost(t, alice.ID, "busy")

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.interactions.AddComment(ctx, alice.ID, post.ID, "hey")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := env.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, n)
	for i := 1; i < n; i++ {
		assert.Greater(t, got.Comments[i].ID, got.Comments[i-1].ID)
	}
}

// Register, log in, post, like twice, follow twice.
func TestScenario_RegisterPostLikeFollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tokens, err := NewTokenService("test-secret", 0)
	require.NoError(t, err)

	u1, err := env.users.Register(ctx, &model.RegisterRequest{
		Username:  "alice",
		Email:     "a@x.com",
		Password:  "secret1",
		AvatarURL: "https://cdn.example.com/avatars/alice.jpg",
	})
	require.NoError(t, err)

	loggedIn, err := env.users.Login(ctx, &model.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	issued, err := tokens.Issue(loggedIn.ID, loggedIn.Email, loggedIn.Username)
	require.NoError(t, err)
	identity, err := tokens.Verify(issued.Token)
	require.NoError(t, err)
	require.Equal(t, u1.ID, identity.UserID)

	post, err := env.posts.Create(ctx, identity.UserID, model.CreatePostRequest{Text: "hello", ImageURL: "https://cdn.example.com/posts/1.jpg"})
	require.NoError(t, err)

	byUser, err := env.posts.ListByUser(ctx, u1.ID)
	require.NoError(t, err)
	all, err := env.posts.ListAll(ctx)
	require.NoError(t, err)
	for _, list := range [][]model.Post{byUser, all} {
		require.Len(t, list, 1)
		assert.Equal(t, post.ID, list[0].ID)
		assert.Empty(t, list[0].Likes)
		assert.Empty(t, list[0].Comments)
	}

	u2 := env.register(t, "bob")

	liked, err := env.interactions.ToggleLike(ctx, u2.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked.Liked)
	assert.Equal(t, 1, liked.LikesCount)

	unliked, err := env.interactions.ToggleLike(ctx, u2.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, unliked.Liked)
	assert.Equal(t, 0, unliked.LikesCount)

	require.NoError(t, env.follows.Follow(ctx, u2.ID, u1.ID))
	profile, err := env.follows.GetProfile(ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.UserSummary{u2.Summary()}, profile.Followers)

	err = env.follows.Follow(ctx, u2.ID, u1.ID)
	assert.ErrorIs(t, err, model.ErrAlreadyFollowing)
}

// interleavingPostRepo lets another writer commit right after each toggle.
type interleavingPostRepo struct {
	repository.PostRepository
	afterToggle func()
}

func (r *interleavingPostRepo) ToggleLike(ctx context.Context, postID, userID int64) (*model.Post, bool, error) {
	post, liked, err := r.PostRepository.ToggleLike(ctx, postID, userID)
	if err == nil && r.afterToggle != nil {
		hook := r.afterToggle
		r.afterToggle = nil
		hook()
	}
	return post, liked, err
}

func TestInteractionService_ToggleLike_ReportsOwnWrite(t *testing.T) {
	tests := []struct {
		name  string
		other func(ctx context.Context, env *testEnv, postID, otherID, authorID int64) error
	}{
		{
			name: "concurrent like",
			other: func(ctx context.Context, env *testEnv, postID, otherID, authorID int64) error {
				_, _, err := env.store.Posts().ToggleLike(ctx, postID, otherID)
				return err
			},
		},
		{
			name: "post deleted",
			other: func(ctx context.Context, env *testEnv, postID, otherID, authorID int64) error {
				return env.store.Posts().Delete(ctx, postID, authorID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			alice := env.register(t, "alice")
			bob := env.register(t, "bob")
			carol := env.register(t, "carol")
			post := env.createPost(t, alice.ID, "hello")

			logger, _ := test.NewNullLogger()
			repo := &interleavingPostRepo{PostRepository: env.store.Posts()}
			repo.afterToggle = func() {
				require.NoError(t, tt.other(ctx, env, post.ID, carol.ID, alice.ID))
			}
			svc := NewInteractionService(repo, env.publisher, logger)

			result, err := svc.ToggleLike(ctx, bob.ID, post.ID)
			require.NoError(t, err)
			assert.True(t, result.Liked)
			assert.Equal(t, 1, result.LikesCount)
			assert.Equal(t, []int64{bob.ID}, []int64(result.Post.Likes))
		})
	}
}

func TestInteractionService_AddComment_EventCarriesPostAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	post := env.createPost(t, alice.ID, "hello")

	comment, err := env.interactions.AddComment(ctx, bob.ID, post.ID, "nice")
	require.NoError(t, err)

	env.publisher.mu.Lock()
	defer env.publisher.mu.Unlock()
	last := env.publisher.events[len(env.publisher.events)-1]
	assert.Equal(t, queue.EventPostCommented, last.Type)
	assert.Equal(t, alice.ID, last.AuthorID)
	assert.Equal(t, bob.ID, last.ActorID)
	assert.Equal(t, comment.ID, last.CommentID)
}

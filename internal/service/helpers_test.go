package service

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"snapshare/internal/model"
	"snapshare/internal/queue"
	"snapshare/internal/repository/memrepo"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ActivityEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, stream string, event queue.ActivityEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, event)
	return "1-0", nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingDeleter struct {
	mu   sync.Mutex
	keys []string
}

func (d *recordingDeleter) DeleteQuietly(ctx context.Context, key *string) {
	if key == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys = append(d.keys, *key)
}

type testEnv struct {
	store        *memrepo.Store
	publisher    *recordingPublisher
	deleter      *recordingDeleter
	users        *UserService
	follows      *FollowService
	posts        *PostService
	interactions *InteractionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := memrepo.New()
	pub := &recordingPublisher{}
	del := &recordingDeleter{}
	return &testEnv{
		store:        store,
		publisher:    pub,
		deleter:      del,
		users:        NewUserService(store.Users(), logger),
		follows:      NewFollowService(store.Users(), pub, logger),
		posts:        NewPostService(store.Posts(), del, pub, logger),
		interactions: NewInteractionService(store.Posts(), pub, logger),
	}
}

func (e *testEnv) register(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), &model.RegisterRequest{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "password1",
		AvatarURL: "https://cdn.example.com/avatars/" + username + ".jpg",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) createPost(t *testing.T, authorID int64, text string) *model.Post {
	t.Helper()
	key := "posts/" + text + ".jpg"
	p, err := e.posts.Create(context.Background(), authorID, model.CreatePostRequest{
		Text:     text,
		ImageURL: "https://cdn.example.com/" + key,
		ImageKey: &key,
	})
	require.NoError(t, err)
	return p
}

package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"snapshare/internal/metrics"
	"snapshare/internal/model"
	"snapshare/internal/queue"
	"snapshare/internal/repository"
)

// objectDeleter removes replaced or orphaned media. *MediaService satisfies it.
type objectDeleter interface {
	DeleteQuietly(ctx context.Context, key *string)
}

// PostService enforces authorship rules around the post store.
type PostService struct {
	postRepo  repository.PostRepository
	media     objectDeleter
	publisher queue.Publisher
	logger    logrus.FieldLogger
}

// NewPostService wires the post store. media may be nil, in which case
// replaced images are left in the bucket.
func NewPostService(
	postRepo repository.PostRepository,
	media objectDeleter,
	publisher queue.Publisher,
	logger logrus.FieldLogger,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		media:     media,
		publisher: publisher,
		logger:    logger.WithField("component", "post_service"),
	}
}

func validatePostText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", model.ErrTextRequired
	}
	if utf8.RuneCountInString(text) > model.MaxPostTextLength {
		return "", model.ErrTextTooLong
	}
	return text, nil
}

// Create stores a new post authored by authorID.
func (s *PostService) Create(ctx context.Context, authorID int64, req model.CreatePostRequest) (*model.Post, error) {
	text, err := validatePostText(req.Text)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		return nil, model.ErrMediaRequired
	}
	req.Text = text

	post, err := s.postRepo.Create(ctx, authorID, req)
	if err != nil {
		return nil, err
	}

	metrics.RecordPostChange("created")
	s.logger.WithFields(logrus.Fields{"post_id": post.ID, "author": authorID}).Info("Post created")
	publish(ctx, s.publisher, s.logger, queue.NewPostCreatedEvent(post.ID, authorID))
	return post, nil
}

// Update replaces the provided fields of a post the actor owns.
func (s *PostService) Update(ctx context.Context, actorID, postID int64, req model.UpdatePostRequest) (*model.Post, error) {
	existing, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != actorID {
		return nil, model.ErrNotPostOwner
	}

	if req.Text != nil {
		text, err := validatePostText(*req.Text)
		if err != nil {
			return nil, err
		}
		req.Text = &text
	}
	if req.IsEmpty() {
		return existing, nil
	}

	post, err := s.postRepo.Update(ctx, postID, actorID, req)
	if err != nil {
		return nil, err
	}

	if req.ImageURL != nil && s.media != nil {
		s.media.DeleteQuietly(ctx, existing.ImageKey)
	}

	metrics.RecordPostChange("updated")
	return post, nil
}

// Delete removes a post the actor owns along with its likes and comments.
func (s *PostService) Delete(ctx context.Context, actorID, postID int64) error {
	existing, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if existing.UserID != actorID {
		return model.ErrNotPostOwner
	}

	if err := s.postRepo.Delete(ctx, postID, actorID); err != nil {
		return err
	}

	if s.media != nil {
		s.media.DeleteQuietly(ctx, existing.ImageKey)
	}

	metrics.RecordPostChange("deleted")
	s.logger.WithFields(logrus.Fields{"post_id": postID, "author": actorID}).Info("Post deleted")
	publish(ctx, s.publisher, s.logger, queue.NewPostDeletedEvent(postID, actorID))
	return nil
}

// ListAll returns every post, newest first.
func (s *PostService) ListAll(ctx context.Context) ([]model.Post, error) {
	return s.postRepo.List(ctx)
}

// ListByUser returns the user's posts, newest first.
func (s *PostService) ListByUser(ctx context.Context, userID int64) ([]model.Post, error) {
	return s.postRepo.ListByUser(ctx, userID)
}

func (s *PostService) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

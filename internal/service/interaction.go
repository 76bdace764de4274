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

// InteractionService handles likes and comments.
type InteractionService struct {
	postRepo  repository.PostRepository
	publisher queue.Publisher
	logger    logrus.FieldLogger
}

func NewInteractionService(postRepo repository.PostRepository, publisher queue.Publisher, logger logrus.FieldLogger) *InteractionService {
	return &InteractionService{
		postRepo:  postRepo,
		publisher: publisher,
		logger:    logger.WithField("component", "interaction_service"),
	}
}

// ToggleLike adds the actor to the post's likes, or removes them if present.
// Calling it twice restores the original state.
func (s *InteractionService) ToggleLike(ctx context.Context, actorID, postID int64) (*model.LikeResult, error) {
	post, liked, err := s.postRepo.ToggleLike(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}

	metrics.RecordLikeToggle(liked)
	publish(ctx, s.publisher, s.logger, queue.NewLikeToggledEvent(postID, post.UserID, actorID, liked))

	return &model.LikeResult{
		Liked:      liked,
		LikesCount: post.LikesCount(),
		Post:       post,
	}, nil
}

// AddComment appends a comment by the actor to the post.
func (s *InteractionService) AddComment(ctx context.Context, actorID, postID int64, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.ErrCommentTextRequired
	}
	if utf8.RuneCountInString(text) > model.MaxCommentLength {
		return nil, model.ErrCommentTooLong
	}

	comment, authorID, err := s.postRepo.AppendComment(ctx, postID, actorID, text)
	if err != nil {
		return nil, err
	}

	metrics.RecordComment()
	s.logger.WithFields(logrus.Fields{"post_id": postID, "comment_id": comment.ID}).Debug("Comment added")
	publish(ctx, s.publisher, s.logger, queue.NewPostCommentedEvent(postID, authorID, actorID, comment.ID))
	return comment, nil
}

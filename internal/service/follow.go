package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"snapshare/internal/metrics"
	"snapshare/internal/model"
	"snapshare/internal/queue"
	"snapshare/internal/repository"
)

// FollowService maintains the symmetric follow relation.
type FollowService struct {
	userRepo  repository.UserRepository
	publisher queue.Publisher
	logger    logrus.FieldLogger
}

func NewFollowService(
	userRepo repository.UserRepository,
	publisher queue.Publisher,
	logger logrus.FieldLogger,
) *FollowService {
	return &FollowService{
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger.WithField("component", "follow_service"),
	}
}

// Follow makes followerID follow followeeID. Both sides change in one
// transaction or not at all.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}

	if err := s.userRepo.Follow(ctx, followerID, followeeID); err != nil {
		return err
	}

	metrics.RecordFollow(true)
	s.logger.WithFields(logrus.Fields{"follower": followerID, "followee": followeeID}).Debug("User followed")
	publish(ctx, s.publisher, s.logger, queue.NewUserFollowedEvent(followerID, followeeID))
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}

	if err := s.userRepo.Unfollow(ctx, followerID, followeeID); err != nil {
		return err
	}

	metrics.RecordFollow(false)
	s.logger.WithFields(logrus.Fields{"follower": followerID, "followee": followeeID}).Debug("User unfollowed")
	publish(ctx, s.publisher, s.logger, queue.NewUserUnfollowedEvent(followerID, followeeID))
	return nil
}

// GetProfile returns the user without credentials, with followers and
// following resolved to summaries in stored order.
func (s *FollowService) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	followers, err := s.userRepo.GetSummaries(ctx, user.Followers)
	if err != nil {
		return nil, err
	}
	following, err := s.userRepo.GetSummaries(ctx, user.Following)
	if err != nil {
		return nil, err
	}

	return &model.Profile{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		Followers: followers,
		Following: following,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"snapshare/internal/model"
	"snapshare/internal/repository"
)

// UserService handles business logic for user operations
type UserService struct {
	repo   repository.UserRepository
	logger logrus.FieldLogger
}

func NewUserService(repo repository.UserRepository, logger logrus.FieldLogger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger.WithField("component", "user_service"),
	}
}

// normalizeRegistration trims the request in place and checks required fields.
func normalizeRegistration(req *model.RegisterRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	switch {
	case req.Username == "":
		return model.ErrUsernameRequired
	case req.Email == "":
		return model.ErrEmailRequired
	case req.Password == "":
		return model.ErrPasswordRequired
	case len(req.Password) < model.MinPasswordLength:
		return model.ErrPasswordTooShort
	}
	return nil
}

// CheckRegistration validates the request and checks that neither the
// username nor the email is taken. It lets callers reject a registration
// before uploading the avatar.
func (s *UserService) CheckRegistration(ctx context.Context, req *model.RegisterRequest) error {
	if err := normalizeRegistration(req); err != nil {
		return err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return model.ErrEmailExists
	}

	exists, err = s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return model.ErrUsernameExists
	}
	return nil
}

// Register creates a new user account. The avatar must already be uploaded.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := s.CheckRegistration(ctx, req); err != nil {
		return nil, err
	}
	if req.AvatarURL == "" {
		return nil, model.ErrAvatarRequired
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHashed: string(hashedPassword),
		AvatarURL:      req.AvatarURL,
		AvatarKey:      req.AvatarKey,
	}

	// Unique constraints still catch a concurrent registration
	if err := s.repo.Create(ctx, user); err != nil {
		if model.KindOf(err) == model.KindConflict {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Login authenticates a user with email and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, model.ErrEmailRequired
	}
	if req.Password == "" {
		return nil, model.ErrPasswordRequired
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if model.KindOf(err) != model.KindNotFound {
			return nil, err
		}
		// Don't reveal whether the email exists or not
		return nil, model.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers returns every user as a summary, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	return s.repo.ListSummaries(ctx)
}

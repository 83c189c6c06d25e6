package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/marketmapper/marketmapper/internal/domain/entity"
	"github.com/marketmapper/marketmapper/internal/domain/repository"
	"github.com/marketmapper/marketmapper/pkg/helpers"
	"github.com/marketmapper/marketmapper/pkg/mailer"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotRegistered = errors.New("email not registered")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService owns local credential auth, signup, and the Google identity
// upsert. Session establishment is left to the HTTP layer.
type AuthService struct {
	Repo   repository.UserRepository
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger

	MailEnabled bool
}

func NewAuthService(repo repository.UserRepository, pub *helpers.RabbitPublisher, logger *logrus.Logger, mailEnabled bool) *AuthService {
	return &AuthService{Repo: repo, Pub: pub, Logger: logger, MailEnabled: mailEnabled}
}

// Login validates email/password and returns the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmailNotRegistered
		}
		return nil, err
	}
	// OAuth-only accounts have no hash; bcrypt never matches an empty hash,
	// so they fall through to invalid credentials as well.
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Signup registers a local account and queues the welcome email.
func (s *AuthService) Signup(ctx context.Context, email, username, password string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	// Welcome email is best effort; signup must not fail on a broken queue.
	if s.Pub != nil && s.MailEnabled {
		if err := s.Pub.PublishJSON(ctx, mailer.WelcomeJob(u.Email, u.Username)); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Warn("welcome email enqueue failed")
		}
	}
	return u, nil
}

// GoogleProfile is the normalized identity returned by Google's userinfo API.
type GoogleProfile struct {
	ID         string
	Email      string
	Name       string
	PictureURL string
}

// LoginWithGoogle finds the user by Google id, refreshing the cached profile
// image, or creates a new account from the profile.
func (s *AuthService) LoginWithGoogle(ctx context.Context, p GoogleProfile) (*entity.User, error) {
	u, err := s.Repo.GetByGoogleID(ctx, p.ID)
	if err == nil {
		if p.PictureURL != "" && p.PictureURL != u.ImageURL {
			u.ImageURL = p.PictureURL
			if uerr := s.Repo.Update(ctx, u); uerr != nil && s.Logger != nil {
				s.Logger.WithError(uerr).WithField("user_id", u.ID).Warn("profile image refresh failed")
			}
		}
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	u = &entity.User{
		Email:    p.Email,
		Username: p.Name,
		GoogleID: p.ID,
		ImageURL: p.PictureURL,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetProfile loads a user by id.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfileInput carries the editable profile fields.
type UpdateProfileInput struct {
	Username string
	ImageURL string
}

// UpdateProfile changes the display name and, when provided, the avatar URL.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Username != "" {
		u.Username = in.Username
	}
	if in.ImageURL != "" {
		u.ImageURL = in.ImageURL
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/auth-service/internal/apperror"
	"github.com/Dan9191/auth-service/internal/auth"
	"github.com/Dan9191/auth-service/internal/models"
	"github.com/Dan9191/auth-service/internal/repository"
)

const (
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgTooManyAttempts    = "Too many login attempts, try again later"
)

// LoginLimiter throttles repeated logins for one username.
// Allow must reserve the attempt atomically; Reset is called after a successful login.
type LoginLimiter interface {
	Allow(ctx context.Context, username string) (bool, error)
	Reset(ctx context.Context, username string) error
}

// Notifier is told about every new registration
type Notifier interface {
	UserRegistered(ctx context.Context, user *models.User) error
}

// Option customizes a Service
type Option func(*Service)

// WithLimiter enables login throttling
func WithLimiter(l LoginLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithNotifier enables registration notifications
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// Service handles registration and login
type Service struct {
	repo     repository.UserRepository
	hasher   *auth.Hasher
	tokens   *auth.TokenIssuer
	log      *logrus.Logger
	limiter  LoginLimiter
	notifier Notifier
}

// NewService initializes a new service
func NewService(repo repository.UserRepository, hasher *auth.Hasher, tokens *auth.TokenIssuer, log *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new user with a hashed password and returns its public projection
func (s *Service) Register(ctx context.Context, in models.RegisterInput) (*models.PublicUser, error) {
	in = normalizeRegister(in)
	if err := validateRegister(in); err != nil {
		return nil, err
	}
	role, err := resolveRole(in.Role)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperror.NewConflictError(msgUserExists, nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NewInternalError("failed to look up user", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.NewValidationError(msgPasswordTooLong)
		}
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user, err := s.repo.Create(ctx, &models.User{
		Name:         in.Name,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.NewConflictError(msgUserExists, err)
		}
		return nil, apperror.NewInternalError("failed to create user", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	if s.notifier != nil {
		if err := s.notifier.UserRegistered(ctx, user); err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("Failed to send registration notification")
		}
	}

	return user.Public(), nil
}

// Login authenticates a user and returns a signed session token
func (s *Service) Login(ctx context.Context, in models.LoginInput) (string, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateLogin(in); err != nil {
		return "", err
	}

	if !s.allow(ctx, in.Username) {
		return "", apperror.NewRateLimitError(msgTooManyAttempts)
	}

	user, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.VerifyDummy(in.Password)
			return "", apperror.NewAuthError(msgInvalidCredentials)
		}
		return "", apperror.NewInternalError("failed to look up user", err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return "", apperror.NewAuthError(msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", apperror.NewInternalError("failed to generate token", err)
	}

	s.reset(ctx, in.Username)
	s.log.WithField("user_id", user.ID).Info("User logged in")
	return token, nil
}

// Limiter errors never block a login

func (s *Service) allow(ctx context.Context, username string) bool {
	if s.limiter == nil {
		return true
	}
	ok, err := s.limiter.Allow(ctx, username)
	if err != nil {
		s.log.WithError(err).Warn("Login limiter unavailable")
		return true
	}
	return ok
}

func (s *Service) reset(ctx context.Context, username string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, username); err != nil {
		s.log.WithError(err).Warn("Failed to reset login attempts")
	}
}

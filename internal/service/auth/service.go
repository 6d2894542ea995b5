// Package auth registers users and checks their credentials against a
// user.Repository.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	passwordvalidator "github.com/wagslane/go-password-validator"

	"github.com/talx-hub/gopher-assist/internal/model"
	"github.com/talx-hub/gopher-assist/internal/model/user"
	"github.com/talx-hub/gopher-assist/internal/serviceerrs"
	authutil "github.com/talx-hub/gopher-assist/internal/utils/auth"
)

type Service struct {
	repo       user.Repository
	log        *slog.Logger
	newID      func() string
	hashCost   int
	minEntropy float64
}

type Option func(*Service)

// WithMinEntropy enables the password strength check. Zero disables it.
func WithMinEntropy(bits float64) Option {
	return func(s *Service) {
		s.minEntropy = bits
	}
}

func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

func New(repo user.Repository, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		log:      log,
		newID:    uuid.NewString,
		hashCost: authutil.HashCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Register(ctx context.Context, username, password string,
) (user.User, error) {
	if err := s.validate(username, password); err != nil {
		return user.User{}, err
	}

	_, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return user.User{}, serviceerrs.ErrConflict
	case !errors.Is(err, serviceerrs.ErrNotFound):
		return user.User{}, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := authutil.HashPassword(password, s.hashCost)
	if err != nil {
		s.log.LogAttrs(ctx,
			slog.LevelError,
			"failed to hash password",
			slog.Any(model.KeyLoggerError, err),
		)
		return user.User{}, fmt.Errorf("%w: %w", serviceerrs.ErrHashing, err)
	}

	u := user.User{
		ID:           s.newID(),
		Username:     username,
		PasswordHash: hash,
	}
	if err = s.repo.Create(ctx, &u); err != nil {
		if errors.Is(err, serviceerrs.ErrConflict) {
			return user.User{}, serviceerrs.ErrConflict
		}
		return user.User{}, fmt.Errorf("failed to store user: %w", err)
	}

	s.log.LogAttrs(ctx,
		slog.LevelInfo,
		"user registered",
		slog.String("id", u.ID),
		slog.String("username", u.Username),
	)
	return u, nil
}

func (s *Service) validate(username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required",
			serviceerrs.ErrValidation)
	}
	if len(password) > authutil.MaxPasswordLength {
		return fmt.Errorf("%w: password is longer than %d bytes",
			serviceerrs.ErrValidation, authutil.MaxPasswordLength)
	}
	if s.minEntropy > 0 {
		if err := passwordvalidator.Validate(password, s.minEntropy); err != nil {
			return fmt.Errorf("%w: %w", serviceerrs.ErrValidation, err)
		}
	}
	return nil
}

// Login reports a wrong password and a broken stored hash the same way.
func (s *Service) Login(ctx context.Context, username, password string,
) (user.User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, serviceerrs.ErrNotFound) {
		return user.User{}, serviceerrs.ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("failed to find user: %w", err)
	}

	if err = authutil.CheckPassword(u.PasswordHash, password); err != nil {
		if !errors.Is(err, authutil.ErrMismatch) {
			s.log.LogAttrs(ctx,
				slog.LevelWarn,
				"stored password hash cannot be compared",
				slog.String("id", u.ID),
				slog.Any(model.KeyLoggerError, err),
			)
		}
		return user.User{}, serviceerrs.ErrUnauthorized
	}
	return u, nil
}

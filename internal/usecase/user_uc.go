package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"audio-track-subscription/internal/domain"
	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

type UserUseCase interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]*model.User, int, error)
}

type userUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) *userUC {
	l := logger.With().Str("component", "UserUC").Logger()
	return &userUC{users: users, log: &l}
}

func (u *userUC) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}

	if _, err := u.users.FindByEmail(ctx, nil, email); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}

	user := &model.User{Name: name, Email: email, PasswordHash: string(hash)}
	if _, err := u.users.Create(ctx, nil, user); err != nil {
		return nil, err
	}
	u.log.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (u *userUC) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}
	user, err := u.users.FindByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (u *userUC) List(ctx context.Context, offset, limit int) ([]*model.User, int, error) {
	users, err := u.users.List(ctx, nil, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := u.users.Count(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

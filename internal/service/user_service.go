package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"projecthub/internal/apperrors"
	"projecthub/internal/auth"
	"projecthub/internal/logger"
	"projecthub/internal/model"
	"projecthub/internal/repository"
	"projecthub/internal/validator"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserService struct {
	users  repository.UserRepositoryInterface
	tokens *auth.Manager
	log    *zap.Logger
}

func NewUserService(users repository.UserRepositoryInterface, tokens *auth.Manager) *UserService {
	return &UserService{users: users, tokens: tokens, log: logger.WithModule("auth")}
}

// Register creates the account and returns it with a fresh token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = model.NormalizeEmail(in.Email)
	if err := validator.Struct(in); err != nil {
		return nil, "", err
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, "", apperrors.ErrConflict.WithMessage("User with this email already exists")
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, "", apperrors.Wrap(err, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperrors.Wrap(err, "failed to hash password")
	}

	user := &model.User{
		ID:             uuid.New(),
		Email:          in.Email,
		Name:           in.Name,
		HashedPassword: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, "", apperrors.ErrConflict.WithMessage("User with this email already exists")
		}
		return nil, "", apperrors.Wrap(err, "failed to create user")
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", apperrors.Wrap(err, "failed to issue token")
	}
	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, token, nil
}

// Login checks the credentials. Unknown email and wrong password look the same to the caller.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*model.User, string, error) {
	in.Email = model.NormalizeEmail(in.Email)
	if err := validator.Struct(in); err != nil {
		return nil, "", err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", apperrors.Wrap(err, "failed to look up user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(in.Password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", apperrors.Wrap(err, "failed to issue token")
	}
	return user, token, nil
}

func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrUnauthorized.WithMessage("User no longer exists")
		}
		return nil, apperrors.Wrap(err, "failed to load user")
	}
	return user, nil
}

// Directory loads the users behind ids, keyed by id. Unknown ids are left out.
func (s *UserService) Directory(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error) {
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load users")
	}
	byID := make(map[uuid.UUID]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"projecthub/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByEmails(ctx context.Context, emails []string) ([]model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByEmail matches on the normalised address and returns ErrUserNotFound when absent.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", model.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// FindByEmails returns the users whose normalised emails are in the list. Missing ones are simply absent.
func (r *UserRepository) FindByEmails(ctx context.Context, emails []string) ([]model.User, error) {
	if len(emails) == 0 {
		return []model.User{}, nil
	}
	normalised := make([]string, 0, len(emails))
	for _, e := range emails {
		normalised = append(normalised, model.NormalizeEmail(e))
	}

	var users []model.User
	err := r.db.WithContext(ctx).Where("email IN ?", normalised).Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// ListByIDs loads the given users. Unknown ids are skipped.
func (r *UserRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	var users []model.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

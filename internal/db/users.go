package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/memestream/memestream/internal/models"
)

// UserRepository provides read access to user profiles
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmails retrieves multiple users by email in one query. Missing
// users are simply absent from the result map.
func (r *UserRepository) GetByEmails(ctx context.Context, emails []string) (map[string]models.User, error) {
	if len(emails) == 0 {
		return map[string]models.User{}, nil
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Where("email IN ?", emails).Find(&users).Error; err != nil {
		return nil, err
	}

	byEmail := make(map[string]models.User, len(users))
	for _, u := range users {
		byEmail[u.Email] = u
	}
	return byEmail, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"aitool-service/internal/model"
	"aitool-service/internal/usage"
	"aitool-service/prometheus"

	"gorm.io/gorm"
)

// UsersRepo is the gorm-backed user store
type UsersRepo struct {
	db *gorm.DB
}

// NewUsersRepo creates a users repository
func NewUsersRepo(db *gorm.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

var _ usage.UserStore = (*UsersRepo)(nil)

// FindByID returns the user with the given ID, or nil when it does not exist
func (r *UsersRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Deactivate flips the user's active flag off. Used by the abuse detector;
// reactivation is an administrative action outside this service.
func (r *UsersRepo) Deactivate(ctx context.Context, id uint) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false).Error
}

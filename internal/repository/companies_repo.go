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

// CompaniesRepo is the gorm-backed company store
type CompaniesRepo struct {
	db *gorm.DB
}

// NewCompaniesRepo creates a companies repository
func NewCompaniesRepo(db *gorm.DB) *CompaniesRepo {
	return &CompaniesRepo{db: db}
}

var _ usage.CompanyStore = (*CompaniesRepo)(nil)

// FindByID returns the company with the given ID, or nil when it does not
// exist
func (r *CompaniesRepo) FindByID(ctx context.Context, id uint) (*model.Company, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var company model.Company
	err := r.db.WithContext(ctx).First(&company, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// IncrementUsage bumps the advisory usage counter. Callers treat failures as
// non-fatal; the counter is never read for enforcement. UpdateColumn skips
// gorm hooks so the increment cannot clobber the plan-derived limit.
func (r *CompaniesRepo) IncrementUsage(ctx context.Context, id uint) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	return r.db.WithContext(ctx).Model(&model.Company{}).
		Where("id = ?", id).
		UpdateColumn("monthly_usage", gorm.Expr("monthly_usage + 1")).Error
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// Subscription plans. Each plan maps to a monthly invocation limit; the
// enterprise plan is unbounded.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// UnlimitedUsage is the stored MonthlyLimit value for plans without a cap.
const UnlimitedUsage int64 = 0

// Company represents the billing tenant that owns a subscription plan and a
// monthly usage quota.
type Company struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	Plan string `json:"plan" gorm:"type:varchar(20);default:free"`
	// MonthlyUsage is an advisory counter only. Quota enforcement always
	// recounts from usage logs; this value may lag behind the truth.
	MonthlyUsage int64          `json:"monthly_usage" gorm:"default:0"`
	MonthlyLimit int64          `json:"monthly_limit" gorm:"default:100"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	AdminID      *uint          `json:"admin_id,omitempty" gorm:"index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// PlanLimit returns the monthly limit for a plan. The second return value is
// false for unbounded plans.
func PlanLimit(plan string) (int64, bool) {
	switch plan {
	case PlanPro:
		return 500, true
	case PlanEnterprise:
		return UnlimitedUsage, false
	default: // free
		return 100, true
	}
}

// BeforeSave keeps MonthlyLimit derived from the plan whenever a company is
// created or its plan changes.
func (co *Company) BeforeSave(tx *gorm.DB) (err error) {
	limit, bounded := PlanLimit(co.Plan)
	if bounded {
		co.MonthlyLimit = limit
	} else {
		co.MonthlyLimit = UnlimitedUsage
	}
	return nil
}

// Unlimited reports whether the company's plan has no monthly cap
func (co *Company) Unlimited() bool {
	_, bounded := PlanLimit(co.Plan)
	return !bounded
}

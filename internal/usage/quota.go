package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aitool-service/internal/model"
	"aitool-service/pkg/config"

	"go.uber.org/zap"
)

// ErrCompanyNotFound is returned when a quota check references a company that
// does not exist. It is fatal to the request; the caller must not dispatch.
var ErrCompanyNotFound = errors.New("company not found")

// QuotaStatus is the result of a quota check
type QuotaStatus struct {
	Allowed     bool
	Unlimited   bool
	Remaining   int64
	Limit       int64
	ActualUsage int64
	Plan        string
}

// QuotaEvaluator computes a company's usage for the current calendar month
// from ledger facts and compares it against the plan-derived limit. The
// cached Company.MonthlyUsage counter is deliberately ignored: recounting
// from immutable logs is deterministic and self-healing where counter
// increments may race or be lost.
type QuotaEvaluator struct {
	companies CompanyStore
	ledger    Ledger
	limits    config.QuotaConfig
	log       *zap.Logger
}

// NewQuotaEvaluator creates a quota evaluator
func NewQuotaEvaluator(companies CompanyStore, ledger Ledger, limits config.QuotaConfig, log *zap.Logger) *QuotaEvaluator {
	return &QuotaEvaluator{
		companies: companies,
		ledger:    ledger,
		limits:    limits,
		log:       log,
	}
}

// CheckLimit evaluates the company's quota for the current calendar month
func (q *QuotaEvaluator) CheckLimit(ctx context.Context, companyID uint) (*QuotaStatus, error) {
	company, err := q.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}

	// Enterprise has no cap; usage is still recorded for observability but
	// never counted for enforcement, so skip the ledger entirely.
	if company.Plan == model.PlanEnterprise {
		return &QuotaStatus{
			Allowed:     true,
			Unlimited:   true,
			ActualUsage: company.MonthlyUsage,
			Plan:        company.Plan,
		}, nil
	}

	actualUsage, err := q.ledger.CountForCompany(ctx, companyID, startOfMonth(time.Now()), model.StatusSuccess)
	if err != nil {
		return nil, fmt.Errorf("failed to count monthly usage: %w", err)
	}

	limit := q.planLimit(company.Plan)
	remaining := limit - actualUsage

	status := &QuotaStatus{
		Allowed:     remaining > 0,
		Remaining:   remaining,
		Limit:       limit,
		ActualUsage: actualUsage,
		Plan:        company.Plan,
	}

	if !status.Allowed {
		q.log.Info("Monthly quota exhausted",
			zap.Uint("company_id", companyID),
			zap.String("plan", company.Plan),
			zap.Int64("used", actualUsage),
			zap.Int64("limit", limit))
	}

	return status, nil
}

// planLimit maps a plan to its monthly limit, defaulting unknown plans to the
// free tier
func (q *QuotaEvaluator) planLimit(plan string) int64 {
	switch plan {
	case model.PlanPro:
		return q.limits.ProLimit
	default: // free
		return q.limits.FreeLimit
	}
}

// startOfMonth returns the first instant of the current calendar month in the
// server's local time
func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

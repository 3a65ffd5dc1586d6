package usage

import (
	"context"
	"time"

	"aitool-service/internal/model"
)

// Reporting periods accepted by the stats endpoints
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// UsageStats is the per-company usage report for one period
type UsageStats struct {
	Period     string     `json:"period"`
	TotalUsage int64      `json:"total_usage"`
	Limit      int64      `json:"limit"`
	Unlimited  bool       `json:"unlimited"`
	Remaining  int64      `json:"remaining"`
	Tools      []ToolStat `json:"tools"`
}

// StatsService answers the read-only reporting calls by delegating to ledger
// aggregation
type StatsService struct {
	companies CompanyStore
	ledger    Ledger
}

// NewStatsService creates a stats service
func NewStatsService(companies CompanyStore, ledger Ledger) *StatsService {
	return &StatsService{companies: companies, ledger: ledger}
}

// GetUsageStats returns the company's tool-by-tool breakdown for the period.
// The breakdown counts sum to TotalUsage and Remaining never goes negative.
func (s *StatsService) GetUsageStats(ctx context.Context, companyID uint, period string) (*UsageStats, error) {
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}

	from, to := PeriodWindow(period, time.Now())

	tools, err := s.ledger.AggregateByTool(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, tool := range tools {
		total += tool.Count
	}

	stats := &UsageStats{
		Period:     normalizePeriod(period),
		TotalUsage: total,
		Limit:      company.MonthlyLimit,
		Unlimited:  company.Unlimited(),
		Tools:      tools,
	}

	if !stats.Unlimited {
		remaining := company.MonthlyLimit - total
		if remaining < 0 {
			remaining = 0
		}
		stats.Remaining = remaining
	}

	return stats, nil
}

// GetUserHistory returns the user's records for the period, newest first
func (s *StatsService) GetUserHistory(ctx context.Context, userID, companyID uint, period string) ([]model.UsageLog, error) {
	from, to := PeriodWindow(period, time.Now())
	return s.ledger.ListForUser(ctx, userID, companyID, from, to)
}

// PeriodWindow returns the half-open [from, to) aggregation window containing
// now: day is midnight to midnight, week is Sunday through Saturday, month is
// the current calendar month. Unknown periods fall back to month.
func PeriodWindow(period string, now time.Time) (time.Time, time.Time) {
	switch period {
	case PeriodDay:
		from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return from, from.AddDate(0, 0, 1)
	case PeriodWeek:
		from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		from = from.AddDate(0, 0, -int(now.Weekday()))
		return from, from.AddDate(0, 0, 7)
	default: // month
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return from, from.AddDate(0, 1, 0)
	}
}

func normalizePeriod(period string) string {
	switch period {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return period
	default:
		return PeriodMonth
	}
}

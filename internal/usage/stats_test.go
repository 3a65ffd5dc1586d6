package usage

import (
	"context"
	"testing"
	"time"

	"aitool-service/internal/model"
)

func TestPeriodWindow(t *testing.T) {
	// Wednesday, 2026-08-19 15:04:05 local time
	now := time.Date(2026, time.August, 19, 15, 4, 5, 0, time.Local)

	tests := []struct {
		period string
		from   time.Time
		to     time.Time
	}{
		{
			period: PeriodDay,
			from:   time.Date(2026, time.August, 19, 0, 0, 0, 0, time.Local),
			to:     time.Date(2026, time.August, 20, 0, 0, 0, 0, time.Local),
		},
		{
			period: PeriodWeek,
			from:   time.Date(2026, time.August, 16, 0, 0, 0, 0, time.Local), // Sunday
			to:     time.Date(2026, time.August, 23, 0, 0, 0, 0, time.Local),
		},
		{
			period: PeriodMonth,
			from:   time.Date(2026, time.August, 1, 0, 0, 0, 0, time.Local),
			to:     time.Date(2026, time.September, 1, 0, 0, 0, 0, time.Local),
		},
		{
			period: "bogus",
			from:   time.Date(2026, time.August, 1, 0, 0, 0, 0, time.Local),
			to:     time.Date(2026, time.September, 1, 0, 0, 0, 0, time.Local),
		},
	}

	for _, tt := range tests {
		from, to := PeriodWindow(tt.period, now)
		if !from.Equal(tt.from) || !to.Equal(tt.to) {
			t.Errorf("PeriodWindow(%q): got [%v, %v), want [%v, %v)",
				tt.period, from, to, tt.from, tt.to)
		}
	}
}

func TestGetUsageStatsBreakdownSumsToTotal(t *testing.T) {
	now := time.Now()
	ledger := &memLedger{}
	for i := 0; i < 5; i++ {
		ledger.add(1, 10, "summarizer", model.StatusSuccess, now.Add(-time.Duration(i)*time.Second))
	}
	for i := 0; i < 3; i++ {
		ledger.add(1, 10, "email-writer", model.StatusSuccess, now.Add(-time.Duration(i)*time.Second))
	}
	// Failures are audit-only and must not appear in the breakdown
	ledger.add(1, 10, "summarizer", model.StatusFailure, now)

	companies := newFakeCompanies(&model.Company{ID: 10, Plan: model.PlanFree, MonthlyLimit: 100})
	stats := NewStatsService(companies, ledger)

	report, err := stats.GetUsageStats(context.Background(), 10, PeriodMonth)
	if err != nil {
		t.Fatalf("GetUsageStats returned error: %v", err)
	}

	if report.TotalUsage != 8 {
		t.Errorf("TotalUsage = %d, want 8", report.TotalUsage)
	}
	var sum int64
	for _, tool := range report.Tools {
		sum += tool.Count
	}
	if sum != report.TotalUsage {
		t.Errorf("tool counts sum to %d, want %d", sum, report.TotalUsage)
	}
	if report.Remaining != 92 {
		t.Errorf("Remaining = %d, want 92", report.Remaining)
	}
	if report.Tools[0].ToolName != "summarizer" {
		t.Errorf("Tools[0] = %q, want summarizer first (highest count)", report.Tools[0].ToolName)
	}
}

func TestGetUsageStatsRemainingFloorsAtZero(t *testing.T) {
	now := time.Now()
	ledger := &memLedger{}
	for i := 0; i < 120; i++ {
		ledger.add(1, 10, "summarizer", model.StatusSuccess, now.Add(-time.Duration(i)*time.Second))
	}

	companies := newFakeCompanies(&model.Company{ID: 10, Plan: model.PlanFree, MonthlyLimit: 100})
	stats := NewStatsService(companies, ledger)

	report, err := stats.GetUsageStats(context.Background(), 10, PeriodMonth)
	if err != nil {
		t.Fatalf("GetUsageStats returned error: %v", err)
	}
	if report.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0 (never negative)", report.Remaining)
	}
}

func TestGetUsageStatsUnknownCompany(t *testing.T) {
	stats := NewStatsService(newFakeCompanies(), &memLedger{})
	if _, err := stats.GetUsageStats(context.Background(), 404, PeriodMonth); err != ErrCompanyNotFound {
		t.Errorf("err = %v, want ErrCompanyNotFound", err)
	}
}

func TestGetUserHistoryNewestFirst(t *testing.T) {
	now := time.Now()
	ledger := &memLedger{}
	ledger.add(1, 10, "summarizer", model.StatusSuccess, now.Add(-3*time.Second))
	ledger.add(1, 10, "email-writer", model.StatusSuccess, now.Add(-time.Second))
	ledger.add(1, 10, "code-generator", model.StatusFailure, now.Add(-2*time.Second))
	// Other users and companies stay out of the history
	ledger.add(2, 10, "summarizer", model.StatusSuccess, now)
	ledger.add(1, 99, "summarizer", model.StatusSuccess, now)

	stats := NewStatsService(newFakeCompanies(), ledger)

	history, err := stats.GetUserHistory(context.Background(), 1, 10, PeriodWeek)
	if err != nil {
		t.Fatalf("GetUserHistory returned error: %v", err)
	}

	if len(history) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.After(history[i-1].Timestamp) {
			t.Errorf("history not ordered newest first at index %d", i)
		}
	}
	if history[0].ToolName != "email-writer" {
		t.Errorf("history[0] = %q, want email-writer (most recent)", history[0].ToolName)
	}
}

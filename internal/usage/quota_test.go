package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"aitool-service/internal/model"
	"aitool-service/pkg/config"

	"go.uber.org/zap"
)

var testLimits = config.QuotaConfig{FreeLimit: 100, ProLimit: 500}

func TestCheckLimitCountsSuccessesThisMonth(t *testing.T) {
	now := time.Now()
	lastMonth := now.AddDate(0, -1, 0)

	ledger := &memLedger{}
	// Three successes this month, one failure this month, one success last
	// month: only the three count
	ledger.add(1, 10, "summarizer", model.StatusSuccess, now.Add(-3*time.Second))
	ledger.add(1, 10, "summarizer", model.StatusSuccess, now.Add(-2*time.Second))
	ledger.add(2, 10, "email-writer", model.StatusSuccess, now.Add(-time.Second))
	ledger.add(1, 10, "summarizer", model.StatusFailure, now.Add(-time.Second))
	ledger.add(1, 10, "summarizer", model.StatusSuccess, lastMonth)
	// Another company's usage must not leak in
	ledger.add(3, 99, "summarizer", model.StatusSuccess, now)

	companies := newFakeCompanies(&model.Company{ID: 10, Plan: model.PlanFree, MonthlyUsage: 999})
	evaluator := NewQuotaEvaluator(companies, ledger, testLimits, zap.NewNop())

	status, err := evaluator.CheckLimit(context.Background(), 10)
	if err != nil {
		t.Fatalf("CheckLimit returned error: %v", err)
	}

	if status.ActualUsage != 3 {
		t.Errorf("ActualUsage = %d, want 3 (cached counter must be ignored)", status.ActualUsage)
	}
	if status.Limit != 100 {
		t.Errorf("Limit = %d, want 100", status.Limit)
	}
	if status.Remaining != 97 {
		t.Errorf("Remaining = %d, want 97", status.Remaining)
	}
	if !status.Allowed {
		t.Error("Allowed = false, want true")
	}
	if status.Plan != model.PlanFree {
		t.Errorf("Plan = %q, want %q", status.Plan, model.PlanFree)
	}
}

func TestCheckLimitExhaustedFreePlan(t *testing.T) {
	now := time.Now()
	ledger := &memLedger{}
	for i := 0; i < 100; i++ {
		ledger.add(1, 10, "summarizer", model.StatusSuccess, now.Add(-time.Duration(i)*time.Second))
	}

	companies := newFakeCompanies(&model.Company{ID: 10, Plan: model.PlanFree})
	evaluator := NewQuotaEvaluator(companies, ledger, testLimits, zap.NewNop())

	status, err := evaluator.CheckLimit(context.Background(), 10)
	if err != nil {
		t.Fatalf("CheckLimit returned error: %v", err)
	}

	if status.Allowed {
		t.Error("Allowed = true, want false at 100/100")
	}
	if status.ActualUsage != 100 {
		t.Errorf("ActualUsage = %d, want 100", status.ActualUsage)
	}
	if status.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", status.Remaining)
	}
}

func TestCheckLimitProPlan(t *testing.T) {
	now := time.Now()
	ledger := &memLedger{}
	for i := 0; i < 150; i++ {
		ledger.add(1, 20, "code-generator", model.StatusSuccess, now.Add(-time.Duration(i)*time.Second))
	}

	companies := newFakeCompanies(&model.Company{ID: 20, Plan: model.PlanPro})
	evaluator := NewQuotaEvaluator(companies, ledger, testLimits, zap.NewNop())

	status, err := evaluator.CheckLimit(context.Background(), 20)
	if err != nil {
		t.Fatalf("CheckLimit returned error: %v", err)
	}

	if status.Limit != 500 {
		t.Errorf("Limit = %d, want 500", status.Limit)
	}
	if status.Remaining != 350 {
		t.Errorf("Remaining = %d, want 350", status.Remaining)
	}
	if !status.Allowed {
		t.Error("Allowed = false, want true")
	}
}

func TestCheckLimitEnterpriseSkipsLedger(t *testing.T) {
	// A failing ledger proves the enterprise path never queries it
	ledger := &memLedger{countErr: errors.New("ledger must not be queried")}
	companies := newFakeCompanies(&model.Company{ID: 30, Plan: model.PlanEnterprise, MonthlyUsage: 12345})
	evaluator := NewQuotaEvaluator(companies, ledger, testLimits, zap.NewNop())

	status, err := evaluator.CheckLimit(context.Background(), 30)
	if err != nil {
		t.Fatalf("CheckLimit returned error: %v", err)
	}

	if !status.Allowed {
		t.Error("Allowed = false, want true for enterprise")
	}
	if !status.Unlimited {
		t.Error("Unlimited = false, want true for enterprise")
	}
}

func TestCheckLimitCompanyNotFound(t *testing.T) {
	evaluator := NewQuotaEvaluator(newFakeCompanies(), &memLedger{}, testLimits, zap.NewNop())

	_, err := evaluator.CheckLimit(context.Background(), 404)
	if !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("err = %v, want ErrCompanyNotFound", err)
	}
}

package usage

import (
	"context"
	"testing"
	"time"

	"aitool-service/internal/model"
	"aitool-service/pkg/config"

	"go.uber.org/zap"
)

var testAbuse = config.AbuseConfig{Window: 5 * time.Minute, Threshold: 30}

func TestCheckSuspendsAtThreshold(t *testing.T) {
	now := time.Now()
	ledger := &memLedger{}
	// Mix of successes and failures: both count toward the abuse signal
	for i := 0; i < 15; i++ {
		ledger.add(1, 10, "summarizer", model.StatusSuccess, now.Add(-time.Duration(i)*time.Second))
	}
	for i := 0; i < 15; i++ {
		ledger.add(1, 10, "summarizer", model.StatusFailure, now.Add(-time.Duration(i)*time.Second))
	}

	users := newFakeUsers()
	detector := NewAbuseDetector(ledger, users, testAbuse, zap.NewNop())

	suspended, err := detector.Check(context.Background(), 1)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if !suspended {
		t.Error("suspended = false, want true at 30 records")
	}
	if !users.deactivated[1] {
		t.Error("user 1 was not deactivated")
	}
}

func TestCheckBelowThreshold(t *testing.T) {
	now := time.Now()
	ledger := &memLedger{}
	for i := 0; i < 29; i++ {
		ledger.add(1, 10, "summarizer", model.StatusSuccess, now.Add(-time.Duration(i)*time.Second))
	}

	users := newFakeUsers()
	detector := NewAbuseDetector(ledger, users, testAbuse, zap.NewNop())

	suspended, err := detector.Check(context.Background(), 1)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if suspended {
		t.Error("suspended = true, want false at 29 records")
	}
	if users.deactivated[1] {
		t.Error("user 1 was deactivated below the threshold")
	}
}

func TestCheckIgnoresRecordsOutsideWindow(t *testing.T) {
	now := time.Now()
	ledger := &memLedger{}
	// Plenty of history, but all of it older than the window
	for i := 0; i < 50; i++ {
		ledger.add(1, 10, "summarizer", model.StatusSuccess, now.Add(-10*time.Minute))
	}
	ledger.add(1, 10, "summarizer", model.StatusSuccess, now)

	users := newFakeUsers()
	detector := NewAbuseDetector(ledger, users, testAbuse, zap.NewNop())

	suspended, err := detector.Check(context.Background(), 1)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if suspended {
		t.Error("suspended = true, want false when the burst is outside the window")
	}
}

func TestCheckDeactivatedUserStaysSuspended(t *testing.T) {
	// No recent records at all: the standing deactivation alone must suspend
	ledger := &memLedger{}
	users := newFakeUsers(&model.User{ID: 1, CompanyID: 10, IsActive: false})
	detector := NewAbuseDetector(ledger, users, testAbuse, zap.NewNop())

	suspended, err := detector.Check(context.Background(), 1)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if !suspended {
		t.Error("suspended = false, want true for a deactivated user with an empty window")
	}
}

func TestCheckSuspensionOutlastsWindow(t *testing.T) {
	now := time.Now()
	ledger := &memLedger{}
	for i := 0; i < 30; i++ {
		ledger.add(1, 10, "summarizer", model.StatusSuccess, now.Add(-time.Duration(i)*time.Second))
	}

	users := newFakeUsers(&model.User{ID: 1, CompanyID: 10, IsActive: true})
	detector := NewAbuseDetector(ledger, users, testAbuse, zap.NewNop())

	suspended, err := detector.Check(context.Background(), 1)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if !suspended {
		t.Fatal("suspended = false, want true at the threshold")
	}

	// Burst drains out of the window; the flipped active flag still gates
	ledger.records = nil
	suspended, err = detector.Check(context.Background(), 1)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if !suspended {
		t.Error("suspended = false after the window drained, want the deactivation to hold")
	}
}

func TestCheckOnlyCountsThatUser(t *testing.T) {
	now := time.Now()
	ledger := &memLedger{}
	for i := 0; i < 40; i++ {
		ledger.add(2, 10, "summarizer", model.StatusSuccess, now)
	}
	ledger.add(1, 10, "summarizer", model.StatusSuccess, now)

	users := newFakeUsers()
	detector := NewAbuseDetector(ledger, users, testAbuse, zap.NewNop())

	suspended, err := detector.Check(context.Background(), 1)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if suspended {
		t.Error("suspended = true, want false: another user's volume must not count")
	}
}

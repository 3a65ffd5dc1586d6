package usage

import (
	"context"
	"fmt"
	"time"

	"aitool-service/pkg/config"

	"go.uber.org/zap"
)

// AbuseDetector flags excessive call volume per user over a trailing sliding
// window. Both successful and failed attempts count toward the signal: a
// burst of failures is as suspicious as a burst of successes.
type AbuseDetector struct {
	ledger    Ledger
	users     UserStore
	window    time.Duration
	threshold int64
	log       *zap.Logger
}

// NewAbuseDetector creates an abuse detector with the configured window and
// threshold (default 5 minutes / 30 requests)
func NewAbuseDetector(ledger Ledger, users UserStore, cfg config.AbuseConfig, log *zap.Logger) *AbuseDetector {
	return &AbuseDetector{
		ledger:    ledger,
		users:     users,
		window:    cfg.Window,
		threshold: cfg.Threshold,
		log:       log,
	}
}

// Check counts the user's recent ledger records and, at or over the
// threshold, deactivates the user and reports suspension. The count and the
// deactivation are not atomic; a few extra requests slipping through before
// suspension takes effect is acceptable. Reactivation is an administrative
// action, not something this service does.
func (d *AbuseDetector) Check(ctx context.Context, userID uint) (bool, error) {
	// A previously deactivated user stays suspended even after the window
	// drains; reactivation is administrative, not time-based
	user, err := d.users.FindByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load user: %w", err)
	}
	if user != nil && !user.IsActive {
		return true, nil
	}

	windowStart := time.Now().Add(-d.window)

	recent, err := d.ledger.CountForUser(ctx, userID, windowStart)
	if err != nil {
		return false, fmt.Errorf("failed to count recent requests: %w", err)
	}

	if recent < d.threshold {
		return false, nil
	}

	if err := d.users.Deactivate(ctx, userID); err != nil {
		return false, fmt.Errorf("failed to suspend user: %w", err)
	}

	d.log.Warn("User suspended for excessive usage",
		zap.Uint("user_id", userID),
		zap.Int64("recent_requests", recent),
		zap.Duration("window", d.window))

	return true, nil
}

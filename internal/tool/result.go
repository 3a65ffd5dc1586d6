package tool

// Outcome tags the result of one orchestrated invocation
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeSuspended     Outcome = "suspended"
	OutcomeQuotaExceeded Outcome = "quota_exceeded"
	OutcomeFailure       Outcome = "failure"
)

// QuotaSnapshot is the usage picture attached to a QuotaExceeded result
type QuotaSnapshot struct {
	Used  int64  `json:"used"`
	Limit int64  `json:"limit"`
	Plan  string `json:"plan"`
}

// UpgradeOption is one plan-upgrade suggestion offered alongside a
// QuotaExceeded result
type UpgradeOption struct {
	Plan         string `json:"plan"`
	MonthlyLimit string `json:"monthly_limit"`
	Price        string `json:"price"`
}

// Result is the tagged outcome of Invoke or StreamChat. Exactly one outcome
// applies; the populated fields depend on it.
type Result struct {
	Outcome Outcome

	// Success
	Output    string
	Provider  string
	Remaining int64
	Unlimited bool
	Limit     int64

	// QuotaExceeded
	Quota          *QuotaSnapshot
	UpgradeOptions []UpgradeOption

	// Failure. Err carries the underlying cause for classification; Reason
	// is the sanitized message safe to echo to clients.
	Err    error
	Reason string
}

// UpgradeOptionsFor returns the upgrade suggestions for a plan
func UpgradeOptionsFor(plan string) []UpgradeOption {
	switch plan {
	case "free":
		return []UpgradeOption{
			{Plan: "pro", MonthlyLimit: "500", Price: "$29/month"},
			{Plan: "enterprise", MonthlyLimit: "Unlimited", Price: "$99/month"},
		}
	case "pro":
		return []UpgradeOption{
			{Plan: "enterprise", MonthlyLimit: "Unlimited", Price: "$99/month"},
		}
	default:
		return []UpgradeOption{}
	}
}

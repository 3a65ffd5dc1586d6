package usage

import (
	"context"
	"time"

	"aitool-service/internal/model"
)

// RecordParams carries the fields of one usage fact to append. Appending is
// unconditional: the ledger documents failed attempts just like successful
// ones and never makes a quota or abuse decision of its own.
type RecordParams struct {
	UserID    uint
	CompanyID uint
	ToolName  string
	Prompt    string
	Response  *string
	Status    string
	Error     *string
}

// ToolStat is the per-tool aggregation row returned by AggregateByTool
type ToolStat struct {
	ToolName string    `json:"tool_name"`
	Count    int64     `json:"count"`
	LastUsed time.Time `json:"last_used"`
}

// Ledger is the append-only record of tool invocation attempts. It is the
// source of truth for quota computation, abuse detection and usage reporting.
type Ledger interface {
	// Record appends one immutable usage fact and returns its ID
	Record(ctx context.Context, params RecordParams) (uint, error)

	// CountForCompany counts records for a company since the given instant,
	// filtered by status when status is non-empty
	CountForCompany(ctx context.Context, companyID uint, since time.Time, status string) (int64, error)

	// CountForUser counts records for a user since the given instant,
	// regardless of status
	CountForUser(ctx context.Context, userID uint, since time.Time) (int64, error)

	// ListForUser returns a user's records within [from, to), newest first
	ListForUser(ctx context.Context, userID, companyID uint, from, to time.Time) ([]model.UsageLog, error)

	// AggregateByTool groups a company's successful records within [from, to)
	// by tool name
	AggregateByTool(ctx context.Context, companyID uint, from, to time.Time) ([]ToolStat, error)
}

// CompanyStore provides company lookups and the advisory usage counter.
// The counter is fire-and-forget bookkeeping; enforcement never reads it.
type CompanyStore interface {
	FindByID(ctx context.Context, id uint) (*model.Company, error)
	IncrementUsage(ctx context.Context, id uint) error
}

// UserStore provides what the abuse detector needs: the active flag for the
// standing-suspension check and the deactivation side effect.
type UserStore interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
	Deactivate(ctx context.Context, id uint) error
}

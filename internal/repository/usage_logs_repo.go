package repository

import (
	"context"
	"time"

	"aitool-service/internal/model"
	"aitool-service/internal/usage"
	"aitool-service/prometheus"

	"gorm.io/gorm"
)

// UsageLogsRepo is the gorm-backed usage ledger. Rows are append-only: the
// repo exposes no update or delete paths.
type UsageLogsRepo struct {
	db *gorm.DB
}

// NewUsageLogsRepo creates a usage logs repository
func NewUsageLogsRepo(db *gorm.DB) *UsageLogsRepo {
	return &UsageLogsRepo{db: db}
}

var _ usage.Ledger = (*UsageLogsRepo)(nil)

// Record appends one usage fact and returns its ID
func (r *UsageLogsRepo) Record(ctx context.Context, params usage.RecordParams) (uint, error) {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	entry := model.UsageLog{
		UserID:    params.UserID,
		CompanyID: params.CompanyID,
		ToolName:  params.ToolName,
		Prompt:    params.Prompt,
		Response:  params.Response,
		Status:    params.Status,
		Error:     params.Error,
	}

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return 0, err
	}

	return entry.ID, nil
}

// CountForCompany counts a company's records since the given instant,
// optionally filtered by status
func (r *UsageLogsRepo) CountForCompany(ctx context.Context, companyID uint, since time.Time, status string) (int64, error) {
	defer prometheus.TrackDBOperation("count")(time.Now())

	query := r.db.WithContext(ctx).Model(&model.UsageLog{}).
		Where("company_id = ? AND timestamp >= ?", companyID, since)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForUser counts a user's records since the given instant, all statuses
func (r *UsageLogsRepo) CountForUser(ctx context.Context, userID uint, since time.Time) (int64, error) {
	defer prometheus.TrackDBOperation("count")(time.Now())

	var count int64
	err := r.db.WithContext(ctx).Model(&model.UsageLog{}).
		Where("user_id = ? AND timestamp >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListForUser returns the user's records within [from, to), newest first
func (r *UsageLogsRepo) ListForUser(ctx context.Context, userID, companyID uint, from, to time.Time) ([]model.UsageLog, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var logs []model.UsageLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND company_id = ? AND timestamp >= ? AND timestamp < ?", userID, companyID, from, to).
		Order("timestamp DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// AggregateByTool groups a company's successful records within [from, to) by
// tool name
func (r *UsageLogsRepo) AggregateByTool(ctx context.Context, companyID uint, from, to time.Time) ([]usage.ToolStat, error) {
	defer prometheus.TrackDBOperation("aggregate")(time.Now())

	var stats []usage.ToolStat
	err := r.db.WithContext(ctx).Model(&model.UsageLog{}).
		Select("tool_name, COUNT(*) AS count, MAX(timestamp) AS last_used").
		Where("company_id = ? AND status = ? AND timestamp >= ? AND timestamp < ?",
			companyID, model.StatusSuccess, from, to).
		Group("tool_name").
		Order("count DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

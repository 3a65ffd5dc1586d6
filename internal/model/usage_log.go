package model

import (
	"time"
)

// Invocation outcome recorded on a usage log entry
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// UsageLog is the immutable audit fact of one tool invocation attempt.
// Every attempt produces exactly one row regardless of outcome; rows are
// never updated or deleted by the service.
type UsageLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	CompanyID uint      `json:"company_id" gorm:"index;not null"`
	ToolName  string    `json:"tool_name" gorm:"type:varchar(50);not null"`
	Prompt    string    `json:"prompt" gorm:"type:text;not null"`
	Response  *string   `json:"response,omitempty" gorm:"type:text"`
	Status    string    `json:"status" gorm:"type:varchar(10);default:success;index"`
	Error     *string   `json:"error,omitempty" gorm:"type:text"`
	Timestamp time.Time `json:"timestamp" gorm:"index;autoCreateTime"`
}

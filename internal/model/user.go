package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents the user model stored in the database. Every user belongs
// to exactly one company; IsActive may be flipped to false by the abuse
// detector without any explicit deactivation request.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Role      string         `json:"role" gorm:"type:varchar(20);default:member"`
	CompanyID uint           `json:"company_id" gorm:"index;not null"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents the database model for users
type User struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement"`
	Username     string          `gorm:"not null;size:255;uniqueIndex:idx_users_username"`
	PasswordHash string          `gorm:"not null;size:255"`
	Cash         decimal.Decimal `gorm:"type:numeric;not null;default:10000.00"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

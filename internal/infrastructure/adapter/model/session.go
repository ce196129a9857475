package model

import (
	"time"
)

// Session represents a browser login session
type Session struct {
	Token     string    `gorm:"primaryKey;size:64"`
	UserID    uint64    `gorm:"not null;index"`
	Flash     string    `gorm:"type:text;not null;default:''"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Session
func (Session) TableName() string {
	return "sessions"
}

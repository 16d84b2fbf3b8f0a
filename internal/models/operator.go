package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin      = "admin"
	RoleDispatcher = "dispatcher"
)

// Operator is a back-office account that schedules assignments and manages
// pilot clients.
type Operator struct {
	gorm.Model
	Email               string `gorm:"uniqueIndex;not null"`
	Password            string `gorm:"not null" json:"-"`
	Name                string
	Role                string `gorm:"default:'dispatcher'"`
	Status              string `gorm:"default:'active'"`
	LastLoginAt         *time.Time
	FailedLoginAttempts int `gorm:"default:0"`
	TokenVersion        int `gorm:"default:1"`
}

package models

import "time"

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null"`
	PasswordHash string   `gorm:"not null" json:"-"`
	FullName     string
	Role         UserRole `gorm:"type:varchar(16);default:'USER';index"`
	TenantID     string   `gorm:"not null;index"`
	IsActive     bool     `gorm:"default:true"`
	LastLoginAt  *time.Time
}

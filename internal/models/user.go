package models

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Phone        string  `gorm:"type:varchar(30);uniqueIndex;not null" json:"phone"`
	Email        *string `gorm:"type:varchar(150);uniqueIndex" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	FullName     string  `gorm:"type:varchar(120);not null" json:"full_name"`
	Role         Role    `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive     bool    `gorm:"default:true" json:"is_active"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

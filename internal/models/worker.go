package models

import (
	"time"

	"gorm.io/datatypes"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

type Worker struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	CityID uint `gorm:"index;not null" json:"city_id"`

	DefaultAddress  string `gorm:"type:text" json:"default_address"`
	ExperienceYears int    `gorm:"default:0" json:"experience_years"`
	Bio             string `gorm:"type:text" json:"bio"`

	ProfilePhotoURL      string `gorm:"type:text" json:"profile_photo_url"`
	ProfilePhotoPublicID string `gorm:"type:varchar(255)" json:"-"`

	CNICNumber string `gorm:"column:cnic_number;type:varchar(20);not null" json:"cnic_number"`

	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"verification_status"`
	VerificationNotes  string             `gorm:"type:text" json:"verification_notes"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkerDocument holds the CNIC scans captured at signup. One row per worker,
// written once and never mutated afterwards.
type WorkerDocument struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	WorkerID uint `gorm:"uniqueIndex;not null" json:"worker_id"`

	CNICFrontURL      string `gorm:"column:cnic_front_url;type:text" json:"cnic_front_url"`
	CNICFrontPublicID string `gorm:"column:cnic_front_public_id;type:varchar(255)" json:"-"`
	CNICBackURL       string `gorm:"column:cnic_back_url;type:text" json:"cnic_back_url"`
	CNICBackPublicID  string `gorm:"column:cnic_back_public_id;type:varchar(255)" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// WorkerService carries the worker's own pricing for a catalog service. The
// set is replaced wholesale on every pricing update.
type WorkerService struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	WorkerID  uint `gorm:"index;not null" json:"worker_id"`
	ServiceID uint `gorm:"index;not null" json:"service_id"`

	MinimumCharges float64 `gorm:"default:0" json:"minimum_charges"`
	HourlyRate     float64 `gorm:"default:0" json:"hourly_rate"`

	CreatedAt time.Time `json:"created_at"`
}

// WorkerReviewLog is the audit trail of admin verification decisions.
type WorkerReviewLog struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	WorkerID uint   `gorm:"index;not null" json:"worker_id"`
	Action   string `gorm:"type:varchar(20);not null" json:"action"`
	Notes    string `gorm:"type:text" json:"notes"`

	Details datatypes.JSON `json:"details"`

	CreatedAt time.Time `json:"created_at"`
}

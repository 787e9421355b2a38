package models

import "time"

// Customer is the optional customer-side extension of a User. Some
// deployments run without this table; registration tolerates its absence.
type Customer struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	CityID *uint `gorm:"index" json:"city_id"`

	DefaultAddress string `gorm:"type:text" json:"default_address"`

	CreatedAt time.Time `json:"created_at"`
}

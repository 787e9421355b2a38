package models

// City is reference data, read-only to the application.
type City struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CityName     string `gorm:"type:varchar(120);not null" json:"city_name"`
	CityNameUrdu string `gorm:"type:varchar(120)" json:"city_name_urdu"`
	IsActive     bool   `gorm:"default:true;index" json:"is_active"`
}

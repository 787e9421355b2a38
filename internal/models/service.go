package models

// Service is the catalog of offerings workers can price (plumbing,
// electrical work, ...). Reference data, read-only to the application.
type Service struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ServiceKey   string `gorm:"type:varchar(60);uniqueIndex;not null" json:"service_key"`
	EnglishName  string `gorm:"type:varchar(120);not null" json:"english_name"`
	UrduName     string `gorm:"type:varchar(120)" json:"urdu_name"`
	Icon         string `gorm:"type:varchar(120)" json:"icon"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
	IsActive     bool   `gorm:"default:true;index" json:"is_active"`
}

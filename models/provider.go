package models

import (
	"time"
)

// ServiceCategory groups providers by trade (plumbing, cleaning, ...)
type ServiceCategory struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null;unique"`
	Description  string    `json:"description" gorm:"type:text"`
	Icon         string    `json:"icon" gorm:"type:varchar(255)"`
	DisplayOrder int       `json:"display_order" gorm:"default:0"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the ServiceCategory model
func (ServiceCategory) TableName() string {
	return "service_categories"
}

type Provider struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	CategoryID   uint             `json:"category_id" gorm:"not null;index"`
	Category     *ServiceCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	BusinessName string           `json:"business_name" gorm:"size:255;not null"`
	Description  string           `json:"description" gorm:"type:text"`
	Phone        string           `json:"phone" gorm:"size:30"`
	HourlyRate   float64          `json:"hourly_rate" gorm:"type:decimal(10,2);not null;check:hourly_rate >= 0"`
	Rating       float64          `json:"rating" gorm:"type:decimal(3,2);default:0"`
	TotalReviews int              `json:"total_reviews" gorm:"default:0"`
	YearsOfExp   int              `json:"years_experience" gorm:"column:years_experience;default:0"`
	IsActive     bool             `json:"is_active" gorm:"default:true;index"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	Availability []ProviderAvailability `json:"availability,omitempty" gorm:"foreignKey:ProviderID"`
}

// TableName specifies the table name for the Provider model
func (Provider) TableName() string {
	return "service_providers"
}

// ProviderAvailability is one recurring weekly window. Times are "HH:MM" or "HH:MM:SS".
type ProviderAvailability struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ProviderID uint   `json:"provider_id" gorm:"not null;index:idx_availability_provider_day"`
	DayOfWeek  int    `json:"day_of_week" gorm:"not null;index:idx_availability_provider_day;check:day_of_week >= 0 AND day_of_week <= 6"`
	StartTime  string `json:"start_time" gorm:"size:8;not null"`
	EndTime    string `json:"end_time" gorm:"size:8;not null"`
	IsActive   bool   `json:"is_active" gorm:"default:true"`
}

// TableName specifies the table name for the ProviderAvailability model
func (ProviderAvailability) TableName() string {
	return "provider_availability"
}

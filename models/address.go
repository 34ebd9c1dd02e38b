package models

import "time"

type Address struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	AddressLine1 string    `json:"address_line1" gorm:"size:255;not null"`
	AddressLine2 *string   `json:"address_line2" gorm:"size:255"`
	City         string    `json:"city" gorm:"size:100;not null"`
	State        string    `json:"state" gorm:"size:100;not null"`
	ZipCode      string    `json:"zip_code" gorm:"size:20;not null"`
	IsPrimary    bool      `json:"is_primary" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Address model
func (Address) TableName() string {
	return "addresses"
}

// AddressRequest is used for both creating and updating addresses.
// On update every field is optional; on create the service enforces the required ones.
type AddressRequest struct {
	AddressLine1 *string `json:"address_line1" binding:"omitempty,max=255"`
	AddressLine2 *string `json:"address_line2" binding:"omitempty,max=255"`
	City         *string `json:"city" binding:"omitempty,max=100"`
	State        *string `json:"state" binding:"omitempty,max=100"`
	ZipCode      *string `json:"zip_code" binding:"omitempty,zip_code"`
	IsPrimary    *bool   `json:"is_primary"`
}

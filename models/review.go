package models

import (
	"time"
)

// Review is a customer's rating of a completed booking
type Review struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BookingID  uint      `json:"booking_id" gorm:"not null;uniqueIndex"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	ProviderID uint      `json:"provider_id" gorm:"not null;index"`
	Rating     int       `json:"rating" gorm:"type:int;not null;check:rating >= 1 AND rating <= 5"`
	Comment    *string   `json:"comment" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}

// CreateReviewRequest is the body of POST /reviews
type CreateReviewRequest struct {
	BookingID  uint    `json:"booking_id" binding:"required"`
	ProviderID uint    `json:"provider_id"`
	Rating     int     `json:"rating"`
	Comment    *string `json:"comment" binding:"omitempty,max=2000"`
}

package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
)

type User struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	Email        string       `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string       `json:"-" gorm:"size:255"` // empty for federated accounts
	FullName     string       `json:"full_name" gorm:"size:255;not null"`
	Phone        string       `json:"phone" gorm:"size:30"`
	AuthProvider AuthProvider `json:"auth_provider" gorm:"type:varchar(20);not null;default:'local'"`
	AvatarURL    *string      `json:"avatar_url" gorm:"size:500"`
	IsActive     bool         `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Addresses []Address `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeSave normalizes the email so the unique index is case-insensitive in practice
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.AuthProvider == "" {
		u.AuthProvider = AuthProviderLocal
	}
	return nil
}

// HasPassword reports whether the account can log in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	FullName string `json:"full_name" binding:"required,max=255"`
	Phone    string `json:"phone" binding:"required,phone_number"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileUpdateRequest is the body of PUT /user/profile
type ProfileUpdateRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,phone_number"`
}

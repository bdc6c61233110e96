package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is a wiki account as seen by the watch list.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;uniqueIndex"`
	Email       string    `json:"email,omitempty"`
	AllowFollow bool      `json:"allow_follow" gorm:"default:false"` // opt-in to appear in other users' watch lists
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserCompact is the public projection used in lists and notifications
type UserCompact struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ToCompact projects a user onto its listing view
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name}
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

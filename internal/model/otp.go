package model

import (
	"time"
)

// OTP represents a one-time passcode issued for phone verification.
// Stored in the global directory database; codes are hashed at rest.
type OTP struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Phone     string    `json:"phone" gorm:"type:varchar(20);index;not null"`
	CodeHash  string    `json:"-" gorm:"type:varchar(64);not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
	Attempts  int       `json:"attempts" gorm:"default:0"`
	Consumed  bool      `json:"consumed" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

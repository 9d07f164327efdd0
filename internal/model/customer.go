package model

import (
	"time"

	"gorm.io/gorm"
)

// Customer represents a buyer in a tenant's database.
type Customer struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Email     string         `json:"email,omitempty" gorm:"type:varchar(100);index"`
	Phone     string         `json:"phone" gorm:"type:varchar(20);uniqueIndex"`
	Address   string         `json:"address,omitempty" gorm:"type:text"`
	City      string         `json:"city,omitempty" gorm:"type:varchar(50)"`
	State     string         `json:"state,omitempty" gorm:"type:varchar(50)"`
	PinCode   string         `json:"pin_code,omitempty" gorm:"type:varchar(10)"`
	Notes     string         `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

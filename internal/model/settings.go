package model

import (
	"time"
)

// Settings represents the storefront configuration in a tenant's database.
// A single row per tenant; created with defaults on first access.
type Settings struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	StoreName      string    `json:"store_name" gorm:"type:varchar(100)"`
	Tagline        string    `json:"tagline,omitempty" gorm:"type:varchar(255)"`
	LogoURL        string    `json:"logo_url,omitempty" gorm:"type:varchar(500)"`
	Currency       string    `json:"currency" gorm:"type:varchar(3);default:'INR'"`
	ContactEmail   string    `json:"contact_email,omitempty" gorm:"type:varchar(100)"`
	ContactPhone   string    `json:"contact_phone,omitempty" gorm:"type:varchar(20)"`
	Address        string    `json:"address,omitempty" gorm:"type:text"`
	CODEnabled     bool      `json:"cod_enabled" gorm:"default:true"`
	OnlinePayments bool      `json:"online_payments" gorm:"default:false"`
	StoreOpen      bool      `json:"store_open" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

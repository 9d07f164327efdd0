package model

import (
	"time"

	"gorm.io/gorm"
)

// Store represents the public storefront record in the global directory
// database. Code is the short store ID embedded in public addressing
// (subdomain or path) and maps to the owning tenant's database.
type Store struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Code      string         `json:"code" gorm:"type:varchar(6);uniqueIndex;not null"` // Immutable once assigned
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	TenantID  string         `json:"tenant_id" gorm:"type:varchar(40);uniqueIndex;not null"`
	OwnerID   uint           `json:"owner_id" gorm:"index;not null"`
	Currency  string         `json:"currency" gorm:"type:varchar(3);default:'INR'"`
	Industry  string         `json:"industry,omitempty" gorm:"type:varchar(50)"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

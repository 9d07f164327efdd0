package model

import (
	"time"

	"gorm.io/gorm"
)

// Owner represents a store owner in the global directory database.
// It is the only tenant metadata held outside the tenant's own database:
// the email -> tenant/store mapping used for login and tenant resolution.
type Owner struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"type:varchar(255);not null"`
	Phone     string         `json:"phone,omitempty" gorm:"type:varchar(20);index"`
	TenantID  string         `json:"tenant_id" gorm:"type:varchar(40);uniqueIndex;not null"` // Immutable once assigned
	StoreID   string         `json:"store_id,omitempty" gorm:"type:varchar(6);index"`        // Empty until store setup completes
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

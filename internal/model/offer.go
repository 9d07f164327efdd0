package model

import (
	"time"

	"gorm.io/gorm"
)

// Offer discount types.
const (
	OfferTypePercent = "percent"
	OfferTypeFlat    = "flat"
)

// Offer represents a discount code in a tenant's database.
type Offer struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	Code       string         `json:"code" gorm:"type:varchar(30);not null;uniqueIndex"`
	Type       string         `json:"type" gorm:"type:varchar(10);not null;default:'percent'"`
	Value      float64        `json:"value" gorm:"not null"`
	MinAmount  float64        `json:"min_amount" gorm:"default:0"`
	StartsAt   time.Time      `json:"starts_at"`
	ExpiresAt  time.Time      `json:"expires_at"`
	UsageLimit int            `json:"usage_limit" gorm:"default:0"` // 0 means unlimited
	UsedCount  int            `json:"used_count" gorm:"default:0"`
	IsActive   bool           `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Live reports whether the offer can be applied at the given time.
func (o *Offer) Live(now time.Time) bool {
	if !o.IsActive {
		return false
	}
	if !o.StartsAt.IsZero() && now.Before(o.StartsAt) {
		return false
	}
	if !o.ExpiresAt.IsZero() && now.After(o.ExpiresAt) {
		return false
	}
	if o.UsageLimit > 0 && o.UsedCount >= o.UsageLimit {
		return false
	}
	return true
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// Payment status values.
const (
	PaymentStatusCreated  = "created"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Payment represents a payment record in a tenant's database. Gateway and
// GatewayRef are opaque references to the external payment provider; the
// provider integration itself lives outside this service.
type Payment struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	OrderID    uint           `json:"order_id" gorm:"index;not null"`
	Amount     float64        `json:"amount" gorm:"not null"`
	Currency   string         `json:"currency" gorm:"type:varchar(3);default:'INR'"`
	Gateway    string         `json:"gateway" gorm:"type:varchar(20)"` // "razorpay", "stripe", "cod"
	GatewayRef string         `json:"gateway_ref,omitempty" gorm:"type:varchar(100);index"`
	Status     string         `json:"status" gorm:"type:varchar(20);index;default:'created'"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

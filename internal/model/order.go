package model

import (
	"time"

	"gorm.io/gorm"
)

// Order status values. Transitions are validated in the order handler.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderItem represents one line of an order. ProductID references a product
// in the same tenant's database only.
type OrderItem struct {
	ProductID   uint    `json:"product_id"`
	VariantName string  `json:"variant_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Order represents a customer order in a tenant's database.
type Order struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	CustomerID  uint           `json:"customer_id" gorm:"index;not null"`
	Items       []OrderItem    `json:"items" gorm:"serializer:json;type:jsonb;not null"`
	Total       float64        `json:"total" gorm:"not null"`
	Status      string         `json:"status" gorm:"type:varchar(20);index;default:'pending'"`
	PaymentMode string         `json:"payment_mode,omitempty" gorm:"type:varchar(20)"` // "cod", "online"
	Address     string         `json:"address,omitempty" gorm:"type:text"`
	Notes       string         `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// Category represents a product category in a tenant's database.
// Names are unique within the tenant; no tenant column is needed because
// each tenant has its own database.
type Category struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string         `json:"description" gorm:"type:text"`
	ImageURL    string         `json:"image_url,omitempty" gorm:"type:varchar(500)"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

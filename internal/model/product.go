package model

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant represents one sellable variation of a product, serialized
// inline with its parent. When a product has variants, price and stock live
// here rather than on the product itself.
type ProductVariant struct {
	Name    string            `json:"name"`
	SKU     string            `json:"sku,omitempty"`
	Price   float64           `json:"price"`
	Stock   int               `json:"stock"`
	Options map[string]string `json:"options,omitempty"` // e.g. {"size": "M", "color": "red"}
}

// Product represents a catalog item in a tenant's database.
type Product struct {
	ID          uint             `json:"id" gorm:"primarykey"`
	Name        string           `json:"name" gorm:"type:varchar(255);not null"`
	Description string           `json:"description" gorm:"type:text"`
	SKU         string           `json:"sku" gorm:"type:varchar(100);uniqueIndex"`
	Price       float64          `json:"price" gorm:"not null"`
	Stock       int              `json:"stock" gorm:"default:0"`
	CategoryID  uint             `json:"category_id" gorm:"index"`
	ImageURLs   []string         `json:"image_urls,omitempty" gorm:"serializer:json;type:jsonb"`
	HasVariants bool             `json:"has_variants" gorm:"default:false"`
	Variants    []ProductVariant `json:"variants,omitempty" gorm:"serializer:json;type:jsonb"`
	IsActive    bool             `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `json:"deleted_at,omitempty" gorm:"index"`
}

// Normalize enforces the variant pricing rule: a product with variants
// enabled carries no price or stock of its own, the variants do.
func (p *Product) Normalize() {
	if p.HasVariants && len(p.Variants) > 0 {
		p.Price = 0
		p.Stock = 0
	}
	if !p.HasVariants {
		p.Variants = nil
	}
}

// BeforeSave normalizes the product before any write.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.Normalize()
	return nil
}

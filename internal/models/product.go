package models

import (
	"time"

	"marmomart/internal/pricing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products in the catalog.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"not null" validate:"required,min=2,max=100"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;type:varchar(120)" validate:"required"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// Product is a catalog entry such as a marble or tile line.
type Product struct {
	ID               string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	CategoryID       string         `json:"category_id" gorm:"index;type:varchar(36)"`
	Category         *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID" validate:"-"`
	Name             string         `json:"name" gorm:"not null" validate:"required,min=3,max=150"`
	SKU              string         `json:"sku" gorm:"uniqueIndex;type:varchar(64)" validate:"required,max=64"`
	Description      string         `json:"description" validate:"omitempty,max=2000"`
	Brand            string         `json:"brand"`
	Material         string         `json:"material"`
	MinOrderQuantity *int           `json:"min_order_quantity" validate:"omitempty,gt=0"`
	IsActive         bool           `json:"is_active" gorm:"default:true"`
	IsFeatured       bool           `json:"is_featured"`
	Variants         []Variant      `json:"variants" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" validate:"dive"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// Variant is one purchasable size/finish/thickness of a product.
type Variant struct {
	ID            string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID     string              `json:"product_id" gorm:"index;type:varchar(36)"`
	Size          string              `json:"size" validate:"required"`
	Finish        string              `json:"finish"`
	Thickness     string              `json:"thickness"`
	PricePerSqft  decimal.NullDecimal `json:"price_per_sqft" gorm:"type:decimal(12,2)"`
	PricePerPiece decimal.NullDecimal `json:"price_per_piece" gorm:"type:decimal(12,2)"`
	StockQuantity int                 `json:"stock_quantity" validate:"gte=0"`
}

// Pricing returns the variant's pricing mode and price.
func (v Variant) Pricing() pricing.Pricing {
	return pricing.FromColumns(v.PricePerSqft, v.PricePerPiece)
}

// Variant returns the variant with the given id.
func (p *Product) Variant(id string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

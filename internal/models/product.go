// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	BusinessID  uuid.UUID           `json:"business_id" gorm:"type:uuid;not null;index"`
	Name        string              `json:"name" gorm:"size:255;not null"`
	Description string              `json:"description" gorm:"type:text"`
	ImageURL    string              `json:"image_url" gorm:"type:text"`
	Price       decimal.NullDecimal `json:"price" gorm:"type:decimal(10,2)"`
	IsAvailable bool                `json:"is_available" gorm:"not null;default:true"`
}

// Purchasable reports whether the product can be inquired about or bought.
func (p *Product) Purchasable() bool {
	return p.IsAvailable
}

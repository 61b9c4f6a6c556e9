// internal/models/business.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Business struct {
	BaseModel
	Name          string            `json:"name" gorm:"size:255;not null"`
	Slug          string            `json:"slug" gorm:"size:255;not null;uniqueIndex"`
	OwnerID       uuid.UUID         `json:"owner_id" gorm:"type:uuid;not null;uniqueIndex"`
	CategoryID    *uuid.UUID        `json:"category_id" gorm:"type:uuid;index"`
	Description   string            `json:"description" gorm:"type:text"`
	Address       string            `json:"address" gorm:"type:text"`
	City          string            `json:"city" gorm:"size:100;not null"`
	State         string            `json:"state" gorm:"size:100;not null"`
	Pincode       string            `json:"pincode" gorm:"size:20"`
	Phone         string            `json:"phone" gorm:"size:20"`
	Email         string            `json:"email" gorm:"size:255"`
	Website       string            `json:"website" gorm:"size:255"`
	OpeningHours  datatypes.JSONMap `json:"opening_hours,omitempty" gorm:"type:jsonb"`
	LogoURL       string            `json:"logo_url" gorm:"type:text"`
	CoverURL      string            `json:"cover_url" gorm:"type:text"`
	Status        BusinessStatus    `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	AverageRating *float64          `json:"average_rating" gorm:"type:decimal(3,2)"`
	TotalReviews  int64             `json:"total_reviews" gorm:"default:0"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Products []Product `json:"products,omitempty" gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
}

// Rating returns the average rating with an unrated business counted as 0.
func (b *Business) Rating() float64 {
	if b.AverageRating == nil {
		return 0
	}
	return *b.AverageRating
}

// IsPublic reports whether the business may appear in public listings.
func (b *Business) IsPublic() bool {
	return b.Status == BusinessStatusApproved
}

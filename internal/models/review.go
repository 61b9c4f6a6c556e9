// internal/models/review.go
package models

import "github.com/google/uuid"

type Review struct {
	BaseModel
	BusinessID uuid.UUID `json:"business_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_business_user"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_business_user;index"`
	Rating     int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment    string    `json:"comment" gorm:"type:text"`

	// Relationships
	Business *Business `json:"business,omitempty" gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
}

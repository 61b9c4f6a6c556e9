// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enums
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeBusiness UserType = "business"
)

func (t UserType) Valid() bool {
	return t == UserTypeCustomer || t == UserTypeBusiness
}

type BusinessStatus string

const (
	BusinessStatusPending  BusinessStatus = "pending"
	BusinessStatusApproved BusinessStatus = "approved"
	BusinessStatusRejected BusinessStatus = "rejected"
)

// BusinessStatuses lists every moderation state in display order.
var BusinessStatuses = []BusinessStatus{
	BusinessStatusPending,
	BusinessStatusApproved,
	BusinessStatusRejected,
}

func (s BusinessStatus) Valid() bool {
	switch s {
	case BusinessStatusPending, BusinessStatusApproved, BusinessStatusRejected:
		return true
	}
	return false
}

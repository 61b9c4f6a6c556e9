// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email          string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string     `json:"-" gorm:"size:255;not null"`
	UserType       UserType   `json:"user_type" gorm:"type:varchar(20)"`
	SessionVersion int        `json:"-" gorm:"not null;default:1"`
	LastSignInAt   *time.Time `json:"last_sign_in_at"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// Profile is keyed by the identity it belongs to.
type Profile struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	FirstName       string    `json:"first_name" gorm:"size:100"`
	LastName        string    `json:"last_name" gorm:"size:100"`
	AvatarURL       string    `json:"avatar_url" gorm:"type:text"`
	Bio             string    `json:"bio" gorm:"type:text"`
	IsBusinessOwner bool      `json:"is_business_owner" gorm:"default:false"`
	Phone           string    `json:"phone" gorm:"size:20"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

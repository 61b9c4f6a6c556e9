// internal/models/category.go
package models

type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Slug        string `json:"slug" gorm:"size:100;not null;uniqueIndex"`
	Icon        string `json:"icon,omitempty" gorm:"size:50"`
	Description string `json:"description,omitempty" gorm:"type:text"`
}

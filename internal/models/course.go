package models

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a course listed in the catalog.
type Course struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title       string         `json:"title" gorm:"type:varchar(200)" validate:"required,min=3,max=200"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;type:varchar(200)" validate:"required,min=3,max=200"`
	Description string         `json:"description" validate:"omitempty,max=5000"`
	Instructor  string         `json:"instructor" gorm:"type:varchar(200)" validate:"omitempty,max=200"`
	Price       int64          `json:"price" validate:"gte=0"` // Minor currency units
	Currency    string         `json:"currency" gorm:"type:varchar(3)" validate:"omitempty,len=3"`
	Published   bool           `json:"published"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

package models

import "time"

// CartItem is a course a user intends to buy.
type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_user_course"`
	CourseID  string    `json:"course_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_user_course"`
	Course    *Course   `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	CreatedAt time.Time `json:"created_at"`
}

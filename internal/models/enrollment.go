package models

import "time"

// Enrollment grants a user permanent access to a course.
// At most one row exists per (user, course).
type Enrollment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_enrollment_user_course"`
	CourseID  string    `json:"course_id" gorm:"type:varchar(36);uniqueIndex:idx_enrollment_user_course"`
	OrderID   string    `json:"order_id" gorm:"type:varchar(36);index"`
	CreatedAt time.Time `json:"created_at"`
}

package services

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrCourseNotFound    = errors.New("course not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidSignature  = errors.New("invalid payment signature")
	ErrAlreadyProcessed  = errors.New("order already processed")
	ErrOrderLocked       = errors.New("order is locked after too many failed verifications")
	ErrVerifyInProgress  = errors.New("verification already in progress for this order")
	ErrEmptyCart         = errors.New("cart has no purchasable courses")
	ErrInvalidAmount     = errors.New("order amount must be positive")
	ErrCourseUnavailable = errors.New("course is not available for purchase")
	ErrAlreadyEnrolled   = errors.New("already enrolled in course")
	ErrAlreadyInCart     = errors.New("course already in cart")
	ErrSlugTaken         = errors.New("course slug already taken")
	ErrUserExists        = errors.New("user already exists")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrInvalidToken      = errors.New("invalid token")
	ErrGateway           = errors.New("payment gateway error")
)

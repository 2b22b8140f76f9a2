package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate limited")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrProductNotFound    = NewStatusError(ErrNotFound, "Product not found")
	ErrCategoryNotFound   = NewStatusError(ErrNotFound, "Category not found")
	ErrOrderNotFound      = NewStatusError(ErrNotFound, "Order not found")
	ErrPaymentNotFound    = NewStatusError(ErrNotFound, "Payment not found")
	ErrUserNotFound       = NewStatusError(ErrNotFound, "User not found")
	ErrNotInCart          = NewStatusError(ErrNotFound, "Product not found in cart")
	ErrNotInWishlist      = NewStatusError(ErrNotFound, "Product not found in wishlist")
	ErrAlreadyInWishlist  = NewStatusError(ErrConflict, "Product already in wishlist")
	ErrEmailTaken         = NewStatusError(ErrConflict, "User with this email already exists")
	ErrLoginRequired      = NewStatusError(ErrUnauthorized, "Please login to continue")
	ErrInvalidCredentials = NewStatusError(ErrUnauthorized, "Invalid email or password")
	ErrAccessDenied       = NewStatusError(ErrForbidden, "Access denied")
	ErrTooManyOTPRequests = NewStatusError(ErrRateLimited, "Too many OTP requests. Please try again later.")
	ErrTooManyOTPAttempts = NewStatusError(ErrRateLimited, "Too many incorrect attempts. Please request a new OTP.")
)

// StatusError carries a client facing message on top of one of the
// sentinel kinds above.
type StatusError struct {
	kind    error
	message string
}

func NewStatusError(kind error, message string) *StatusError {
	return &StatusError{kind: kind, message: message}
}

func (e *StatusError) Error() string {
	return e.message
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError indicates malformed or missing input (bad dates, empty
// required fields). Nothing is written when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError indicates a product is already reserved for an overlapping
// date range. It names the offending product and the blocking order so the
// caller can show a useful message instead of a generic failure.
type ConflictError struct {
	ProductID   int
	ProductCode string
	OrderID     int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("product %s is already booked for these dates (order #%d)", e.ProductCode, e.OrderID)
}

// AuthorizationError indicates the acting user is not allowed to perform
// the operation (staff editing another staff's order, non-pending order, etc).
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// NotFoundError indicates a referenced entity does not exist. Entities are
// addressed by numeric ID or, for products, by code.
type NotFoundError struct {
	Entity string
	ID     int
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...interface{}) error {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity string, id int) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func NotFoundKey(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrRentalNotFound      = errors.New("rental agreement not found")
	ErrChatNotFound        = errors.New("chat not found")
	ErrListingNotFound     = errors.New("listing not found")
	ErrRentalAlreadyActive = errors.New("chat already has an active rental agreement")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrVerificationFailed  = errors.New("verification failed")
	ErrValidation          = errors.New("validation failed")
	ErrForbidden           = errors.New("caller is not allowed to act for this party")
	ErrUnauthorized        = errors.New("caller identity required")
	ErrDatabase            = errors.New("database error")
	ErrCache               = errors.New("cache error")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeRentalNotFound      = "RENTAL_NOT_FOUND"
	ErrCodeChatNotFound        = "CHAT_NOT_FOUND"
	ErrCodeListingNotFound     = "LISTING_NOT_FOUND"
	ErrCodeRentalAlreadyActive = "RENTAL_ALREADY_ACTIVE"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeVerificationFailed  = "VERIFICATION_FAILED"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

// CodeOf returns the business code carried by err, or an empty string.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// MessageOf returns the human readable message carried by err.
func MessageOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func WrapRentalNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeRentalNotFound,
		fmt.Sprintf("Rental agreement %s not found", id),
		ErrRentalNotFound,
	)
}

func WrapChatNotFound(chatID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeChatNotFound,
		fmt.Sprintf("Chat %d not found", chatID),
		ErrChatNotFound,
	)
}

func WrapListingNotFound(listingID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeListingNotFound,
		fmt.Sprintf("Listing %d not found", listingID),
		ErrListingNotFound,
	)
}

func WrapRentalAlreadyActive(chatID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeRentalAlreadyActive,
		fmt.Sprintf("Chat %d already has a rental that is not completed", chatID),
		ErrRentalAlreadyActive,
	)
}

func WrapInvalidTransition(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTransition,
		message,
		ErrInvalidTransition,
	)
}

func WrapVerificationFailed(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeVerificationFailed,
		message,
		ErrVerificationFailed,
	)
}

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		message,
		ErrValidation,
	)
}

func WrapForbidden(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeForbidden,
		message,
		ErrForbidden,
	)
}

func WrapUnauthorized() *BusinessError {
	return NewBusinessError(
		ErrCodeUnauthorized,
		"X-User-ID header is required",
		ErrUnauthorized,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		fmt.Errorf("%w: %v", ErrDatabase, err),
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		fmt.Errorf("%w: %v", ErrCache, err),
	)
}

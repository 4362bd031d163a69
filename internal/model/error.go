package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeQuantityUnavailable = "QUANTITY_UNAVAILABLE"
	ErrCodeAlreadyResolved     = "ALREADY_RESOLVED"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrUserNotFound       = NewDomainError(ErrCodeNotFound, "User not found")
	ErrProductNotFound    = NewDomainError(ErrCodeNotFound, "Product not found")
	ErrCartItemNotFound   = NewDomainError(ErrCodeNotFound, "Cart item not found")
	ErrOfferNotFound      = NewDomainError(ErrCodeNotFound, "Offer not found")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "Access denied")
	ErrAlreadyResolved    = NewDomainError(ErrCodeAlreadyResolved, "Offer already responded to")
	ErrInvalidCredentials = NewDomainError(ErrCodeUnauthorised, "Invalid username or password")
	ErrUsernameTaken      = NewDomainError(ErrCodeValidation, "Username already exists. Please choose a different one.")
	ErrEmailTaken         = NewDomainError(ErrCodeValidation, "Email already registered. Please use a different email.")
	ErrProductUnavailable = NewDomainError(ErrCodeValidation, "Product not available")
	ErrInvalidQuantity    = NewDomainError(ErrCodeValidation, "Quantity must be at least 1")
	ErrInvalidPrice       = NewDomainError(ErrCodeValidation, "Price must be greater than 0")
	ErrInvalidImageType   = NewDomainError(ErrCodeValidation, "Image must be a png, jpg, jpeg or gif file")
)

// NewQuantityUnavailable builds the stock-check error naming the amount
// still available and its unit.
func NewQuantityUnavailable(available int, unit string) *DomainError {
	return &DomainError{
		Code:    ErrCodeQuantityUnavailable,
		Message: fmt.Sprintf("Only %d %s available", available, unit),
	}
}

// NewValidationError builds a form-level validation error.
func NewValidationError(message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

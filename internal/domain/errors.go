package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
//
// Submission errors (invalid price/quantity, unknown symbol) are returned
// before any book mutation, so a rejected submission leaves the book
// untouched and the caller may retry with corrected input.
var (
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrUnknownSymbol       = errors.New("unknown_symbol")
	ErrOrderNotFound       = errors.New("order_not_found")
	ErrPlayerAlreadyExists = errors.New("player_already_exists")
	ErrPlayerNotFound      = errors.New("player_not_found")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

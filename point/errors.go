/*
errors.go - Centralized error types for the point ledger

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every user-facing failure carries a short stable code (P002, P005, ...)
  so the HTTP layer can build its error payload without inspecting
  error strings.

ERROR CATEGORIES:
  1. Validation errors - bad user id or amount, rejected before the engine runs
  2. Domain errors     - a transition that would break a balance invariant
  3. Internal errors   - anything unexpected

USAGE:
  Callers match with errors.Is():

    if errors.Is(err, point.ErrInsufficientPoint) {
        // balance too low, nothing was written
    }

  and recover the code with point.CodeOf(err).

SEE ALSO:
  - service.go: produces these errors
  - api/dto.go: maps them to HTTP status and response body
*/
package point

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidUserID is returned when a user id is zero or negative.
	ErrInvalidUserID = errors.New("user id must be positive")

	// ErrInvalidChargeAmount is returned when a charge amount is not positive.
	ErrInvalidChargeAmount = errors.New("charge amount must be positive")

	// ErrInvalidUseAmount is returned when a use amount is not positive.
	ErrInvalidUseAmount = errors.New("use amount must be positive")

	// ErrMaxPointExceeded is returned when a charge would push the balance
	// above MaxPoint. The attempted mutation writes nothing.
	ErrMaxPointExceeded = errors.New("max point exceeded")

	// ErrInsufficientPoint is returned when a use would push the balance
	// below zero. The attempted mutation writes nothing.
	ErrInsufficientPoint = errors.New("insufficient point")

	// ErrUserNotFound is reserved. The engine treats unknown users as
	// zero-balance records and never raises it; the facade keeps the
	// mapping so the code stays stable if lookups ever become strict.
	ErrUserNotFound = errors.New("user not found")
)

// Error codes as exposed on the wire.
const (
	CodeUserNotFound        = "P001"
	CodeInvalidChargeAmount = "P002"
	CodeMaxPointExceeded    = "P003"
	CodeInvalidUseAmount    = "P004"
	CodeInsufficientPoint   = "P005"
	CodeValidationFailed    = "P006"
	CodeInternalError       = "P999"
)

// CodeOf returns the wire code for err.
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrInvalidChargeAmount):
		return CodeInvalidChargeAmount
	case errors.Is(err, ErrMaxPointExceeded):
		return CodeMaxPointExceeded
	case errors.Is(err, ErrInvalidUseAmount):
		return CodeInvalidUseAmount
	case errors.Is(err, ErrInsufficientPoint):
		return CodeInsufficientPoint
	case errors.Is(err, ErrInvalidUserID):
		return CodeValidationFailed
	default:
		return CodeInternalError
	}
}

// IsValidation reports whether err is a bad-input error the caller can fix.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidChargeAmount) ||
		errors.Is(err, ErrInvalidUseAmount)
}

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MaxPointExceededError reports how far a charge overshot the cap.
type MaxPointExceededError struct {
	UserID    int64
	Balance   int64
	Requested int64
}

func (e *MaxPointExceededError) Error() string {
	return fmt.Sprintf("max point exceeded: balance %d + charge %d > %d (user %d)",
		e.Balance, e.Requested, MaxPoint, e.UserID)
}

func (e *MaxPointExceededError) Unwrap() error {
	return ErrMaxPointExceeded
}

// InsufficientPointError reports how far a use overdrew the balance.
type InsufficientPointError struct {
	UserID    int64
	Balance   int64
	Requested int64
}

func (e *InsufficientPointError) Error() string {
	return fmt.Sprintf("insufficient point: balance %d < use %d (user %d)",
		e.Balance, e.Requested, e.UserID)
}

func (e *InsufficientPointError) Unwrap() error {
	return ErrInsufficientPoint
}

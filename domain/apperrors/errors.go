// Package apperrors defines the stable error vocabulary of the lottery
// core. Every failure a caller can act on carries a fixed code and a
// category, so clients can distinguish "pick another ticket" from
// "fix your input" from "try again later".
package apperrors

import (
	"errors"
	"fmt"
)

// Category classifies an error for propagation and HTTP mapping
type Category string

const (
	// CategoryValidation: malformed input, rejected before any lock is
	// taken; no side effects.
	CategoryValidation Category = "validation"
	// CategoryConflict: detected inside the transaction (already sold,
	// already claimed, insufficient funds); transaction rolled back.
	CategoryConflict Category = "conflict"
	// CategoryResource: a required record does not exist (no draw yet,
	// unknown ticket); operation aborted cleanly.
	CategoryResource Category = "resource"
	// CategoryIntegrity: an expected reference row is missing; fatal for
	// the request, never silently ignored.
	CategoryIntegrity Category = "integrity"
	// CategoryInternal: unexpected infrastructure failure.
	CategoryInternal Category = "internal"
)

// Error is a coded domain error
type Error struct {
	Code     string
	Category Category
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes wrapped copies of a sentinel match the sentinel itself
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of e carrying err as its cause
func (e *Error) Wrap(err error) *Error {
	return &Error{Code: e.Code, Category: e.Category, Message: e.Message, Err: err}
}

// Sentinel errors for every user-visible failure of the core
var (
	ErrInvalidInput = &Error{Code: "INVALID_INPUT", Category: CategoryValidation, Message: "malformed or missing input"}

	ErrTicketNotFound    = &Error{Code: "TICKET_NOT_FOUND", Category: CategoryResource, Message: "no ticket with this code in the current period"}
	ErrTicketAlreadySold = &Error{Code: "TICKET_ALREADY_SOLD", Category: CategoryConflict, Message: "ticket has already been sold"}
	ErrInsufficientFunds = &Error{Code: "INSUFFICIENT_FUNDS", Category: CategoryConflict, Message: "wallet balance does not cover the ticket price"}

	ErrInsufficientSoldTickets = &Error{Code: "INSUFFICIENT_SOLD_TICKETS", Category: CategoryResource, Message: "fewer than five sold tickets to draw from"}
	ErrGenerationFailed        = &Error{Code: "GENERATION_FAILED", Category: CategoryInternal, Message: "could not generate enough unique ticket codes"}

	ErrTicketNotOwned = &Error{Code: "TICKET_NOT_OWNED", Category: CategoryResource, Message: "no such ticket in this account"}
	ErrAlreadyClaimed = &Error{Code: "ALREADY_CLAIMED", Category: CategoryConflict, Message: "ticket reward has already been claimed"}
	ErrNotAWinner     = &Error{Code: "NOT_A_WINNER", Category: CategoryResource, Message: "ticket did not match any prize tier"}
	ErrNoDrawYet      = &Error{Code: "NO_DRAW_YET", Category: CategoryResource, Message: "no draw result has been published"}

	ErrUserNotFound       = &Error{Code: "USER_NOT_FOUND", Category: CategoryResource, Message: "account does not exist"}
	ErrUsernameTaken      = &Error{Code: "USERNAME_TAKEN", Category: CategoryConflict, Message: "username is already registered"}
	ErrInvalidCredentials = &Error{Code: "INVALID_CREDENTIALS", Category: CategoryValidation, Message: "username or password is incorrect"}
	ErrPermissionDenied   = &Error{Code: "PERMISSION_DENIED", Category: CategoryValidation, Message: "admin access required"}

	ErrIntegrity = &Error{Code: "INTEGRITY", Category: CategoryIntegrity, Message: "required reference data is missing"}
	ErrInternal  = &Error{Code: "INTERNAL", Category: CategoryInternal, Message: "internal error"}
)

// Internal wraps an unexpected infrastructure failure
func Internal(err error) *Error {
	return ErrInternal.Wrap(err)
}

// CodeOf extracts the stable code from err, or "INTERNAL" for
// uncategorized errors
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInternal.Code
}

// CategoryOf extracts the category from err, or CategoryInternal for
// uncategorized errors
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryInternal
}

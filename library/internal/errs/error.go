package errs

import (
	"errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email is already registered")
	ErrConflict   = errors.New("conflict")

	ErrWrongPassword = errors.New("wrong password")
	ErrTokenInvalid  = errors.New("reset token is invalid or expired")

	ErrItemUnavailable = errors.New("item is not available")
	ErrLoanClosed      = errors.New("loan is already returned")
	ErrReturnDate      = errors.New("return date is before borrow date")
	ErrHasOpenLoans    = errors.New("open loans exist")

	ErrEmptyUpdate = errors.New("no fields to update")
)

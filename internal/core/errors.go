package core

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the stores and the ledger service
// wraps exactly one of these so callers can classify with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var (
	ErrInvalidAmount        = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrEmptyDescription     = fmt.Errorf("%w: empty description", ErrValidation)
	ErrDescriptionTooLong   = fmt.Errorf("%w: description too long (max %d characters)", ErrValidation, MaxDescriptionLen)
	ErrInvalidDate          = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidMonth         = fmt.Errorf("%w: invalid month key", ErrValidation)
	ErrUnknownCategory      = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrUnknownSubcategory   = fmt.Errorf("%w: subcategory does not belong to category", ErrValidation)
	ErrUnknownPaymentMethod = fmt.Errorf("%w: unknown payment method", ErrValidation)
	ErrUnknownKind          = fmt.Errorf("%w: unknown record kind", ErrValidation)
	ErrConfirmationMismatch = fmt.Errorf("%w: confirmation text does not match", ErrValidation)
	ErrConfirmationRequired = fmt.Errorf("%w: confirmation required", ErrValidation)
)

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err refers to a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsStorageUnavailable reports whether err comes from an unreadable or
// unwritable backing document.
func IsStorageUnavailable(err error) bool { return errors.Is(err, ErrStorageUnavailable) }

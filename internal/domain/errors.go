package domain

import "errors"

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInternalError     = errors.New("internal error")
	ErrUserNotFound      = errors.New("user not found")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrNameRequired      = errors.New("name is required")
	ErrNameTooLong       = errors.New("name exceeds maximum length")

	// Tax computation errors. These are never coerced away: a bad input
	// here means an incorrect BAS figure downstream.
	ErrInvalidAmount     = errors.New("amount must be a finite number")
	ErrBatchTooLarge     = errors.New("batch exceeds maximum record count")
	ErrInvalidPercentage = errors.New("business use percentage must be between 0 and 100")
	ErrInvalidTaxPeriod  = errors.New("tax period must match YYYYQ[1-4]")
	ErrInvalidCategory   = errors.New("unrecognized tax category code")

	ErrTransactionNotFound = errors.New("transaction not found")
	ErrReceiptNotFound     = errors.New("receipt not found")
	ErrRuleNotFound        = errors.New("category rule not found")
	ErrInvalidABN          = errors.New("invalid ABN")
	ErrKeywordsRequired    = errors.New("at least one keyword is required")
)

// Validation constants
const (
	MaxTransactionNameLength  = 255
	MaxTransactionNotesLength = 1000
	MaxMerchantNameLength     = 255
	MaxRuleNameLength         = 100
)

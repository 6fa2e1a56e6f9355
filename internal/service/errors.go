package service

import "errors"

// Sentinel errors mapped to HTTP statuses at the transport boundary.
var (
	// ErrForbidden means the acting trader does not own the target record.
	ErrForbidden = errors.New("forbidden")
	// ErrTraderLimit means the trader cap has been reached.
	ErrTraderLimit = errors.New("trader limit reached")
	// ErrNameTaken means the trader name already exists (case-insensitive).
	ErrNameTaken = errors.New("trader name already taken")
	// ErrInvalidCredentials means name or PIN did not match.
	ErrInvalidCredentials = errors.New("invalid name or pin")
	// ErrPinLength means the PIN falls outside the configured bounds.
	ErrPinLength = errors.New("pin length out of bounds")
	// ErrValidation means a request field failed basic validation.
	ErrValidation = errors.New("invalid field")
)

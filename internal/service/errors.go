package service

import (
	"errors"

	"pharma-market/internal/extraction"
)

var (
	// ErrInvalidCredentials indicates no user or request matches the phone/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountNotApproved indicates the matching user is not approved.
	ErrAccountNotApproved = errors.New("account not approved")
	// ErrRequestPending indicates the matching registration request awaits review.
	ErrRequestPending = errors.New("registration request pending")
	// ErrRequestRejected indicates the matching registration request was rejected.
	ErrRequestRejected = errors.New("registration request rejected")
	// ErrDuplicatePhone indicates the phone is already used by a user or request.
	ErrDuplicatePhone = errors.New("phone already registered")
	// ErrExtraction indicates the price list could not be parsed.
	ErrExtraction = extraction.ErrExtraction

	ErrNotFound          = errors.New("not found")
	ErrEmptyOrder        = errors.New("no cart items for warehouse")
	ErrInvoiceNotAllowed = errors.New("invoice is only available for completed orders")
	ErrInvalidDecision   = errors.New("decision must be APPROVED or REJECTED")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

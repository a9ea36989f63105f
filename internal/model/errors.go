package model

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrFormNotFound        = errors.New("form not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrPaymentRejected     = errors.New("payment rejected")
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	ErrInvalidSignature    = errors.New("webhook signature invalid")
	ErrInvalidNonce        = errors.New("invalid or expired nonce")
)

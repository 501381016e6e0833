package payment

import "errors"

var (
	ErrInitiationFailed = errors.New("payment initiation failed")
	ErrInvalidAmount    = errors.New("invalid payment amount")
	ErrNotConfigured    = errors.New("payment gateway is not configured")
)

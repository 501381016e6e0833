package buyers

import "errors"

var (
	ErrFileNotFound      = errors.New("file upload not found")
	ErrBuyerNotFound     = errors.New("buyer not found")
	ErrEmailNotFound     = errors.New("buyer email not found")
	ErrForbidden         = errors.New("forbidden")
	ErrMissingReference  = errors.New("missing 'reference' or 'trxref' in callback request")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrPaymentInitiation = errors.New("failed to initiate payment")
)

package payment

import (
	"fmt"
	"math/big"
	"strings"
)

// ToMinorUnits converts a decimal amount such as "50.00" into the gateway's
// minor currency unit (x100), truncating anything past the second decimal.
func ToMinorUnits(amount string) (int64, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(amount))
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if r.Sign() < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, amount)
	}
	r.Mul(r, big.NewRat(100, 1))
	minor := new(big.Int).Quo(r.Num(), r.Denom())
	if !minor.IsInt64() {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, amount)
	}
	return minor.Int64(), nil
}

// maxAmountDigits caps total digits, two of them decimal.
const maxAmountDigits = 10

// NormalizeAmount validates a user-supplied decimal and renders it with
// exactly two decimal places ("50" -> "50.00").
func NormalizeAmount(amount string) (string, error) {
	s := strings.TrimSpace(amount)
	r, ok := new(big.Rat).SetString(s)
	if !ok || strings.ContainsAny(s, "eE/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if r.Sign() < 0 {
		return "", fmt.Errorf("%w: %q is negative", ErrInvalidAmount, amount)
	}
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > 2 {
		return "", fmt.Errorf("%w: %q has more than 2 decimal places", ErrInvalidAmount, amount)
	}
	out := r.FloatString(2)
	if len(strings.Replace(out, ".", "", 1)) > maxAmountDigits {
		return "", fmt.Errorf("%w: %q has too many digits", ErrInvalidAmount, amount)
	}
	return out, nil
}

// IsPositive reports whether amount parses to a value above zero. Unset,
// zero and malformed amounts all mean no payment is due.
func IsPositive(amount *string) bool {
	if amount == nil {
		return false
	}
	r, ok := new(big.Rat).SetString(strings.TrimSpace(*amount))
	return ok && r.Sign() > 0
}

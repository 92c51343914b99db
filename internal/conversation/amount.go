package conversation

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	apperrors "github.com/kutkeldi-dev/telegram-financial-bot/internal/errors"
)

var maxAmount = decimal.New(10_000_000, 0)

// ParseAmount normalizes and validates a user-typed amount. Commas are
// accepted as decimal separators and all whitespace (including non-breaking
// spaces used as thousand separators) is stripped before parsing.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperrors.NewValidationError(txtErrAmountFormat)
	}
	if d.IsNegative() {
		return decimal.Zero, apperrors.NewValidationError(txtErrAmountNegative)
	}
	if d.GreaterThan(maxAmount) {
		return decimal.Zero, apperrors.NewValidationError(txtErrAmountTooLarge)
	}
	if d.Exponent() < -2 {
		return decimal.Zero, apperrors.NewValidationError(txtErrAmountPrecision)
	}
	return d, nil
}

// ValidatePurpose checks a free-form expense description. A digits-only
// entry is rejected with dedicated guidance: it almost always means the user
// typed a second amount instead of a description.
func ValidatePurpose(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", apperrors.NewValidationError(txtErrPurposeEmpty)
	}
	if isDigitsOnly(s) {
		return "", apperrors.NewValidationError(txtErrPurposeDigits)
	}
	if len([]rune(s)) > 500 {
		return "", apperrors.NewValidationError(txtErrPurposeTooLong)
	}
	return s, nil
}

func isDigitsOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

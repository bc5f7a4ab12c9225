// Package moneypkg provides common money amount related functionality for apps.
package moneypkg

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits money amounts are stored with.
const Scale = 2

// MaxIntegerDigits is the number of integer digits that fit into NUMERIC(18,2).
const MaxIntegerDigits = 16

// maxFractionDigits bounds trailing zeros accepted after Scale, e.g. "1.500".
const maxFractionDigits = 16

// ErrInvalid indicates malformed or out of range money amount.
var ErrInvalid = errors.New("invalid money amount")

// amountPattern allows plain decimal notation only, exponents are rejected
// before the value is handed to decimal.
var amountPattern = regexp.MustCompile(fmt.Sprintf(`^-?\d{1,%d}(\.\d{1,%d})?$`, MaxIntegerDigits, maxFractionDigits))

// Parse converts s into a decimal amount.
//
// Amounts with more than Scale significant fractional digits or with more than
// MaxIntegerDigits integer digits are rejected.
func Parse(s string) (decimal.Decimal, error) {
	if !amountPattern.MatchString(s) {
		return decimal.Zero, ErrInvalid
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalid
	}

	if !d.Equal(d.Round(Scale)) {
		return decimal.Zero, ErrInvalid
	}

	return d, nil
}

// Format returns d with exactly Scale fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// Normalize parses s and formats it back, e.g. "10" becomes "10.00".
func Normalize(s string) (string, error) {
	d, err := Parse(s)
	if err != nil {
		return "", err
	}

	return Format(d), nil
}

// ValidAmount validates whether the field holds a valid money amount.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := Parse(s)
		return err == nil
	}

	return false
}

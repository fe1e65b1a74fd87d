// internal/game/codec.go
//
// Conversion between the keypad's fixed-width digit strings and decimal values.
// The decimal point is implied: it sits decimalPlaces digits from the right,
// so "15200" with 2 places is 152.00 and "153" with 2 places is 1.53.

package game

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PadInput trims raw, checks it is all digits and left-pads it with zeros to width.
// A width <= 0 disables padding and the length check.
func PadInput(raw string, width int) (string, error) {
	s := strings.TrimSpace(raw)
	if err := checkDigits(s); err != nil {
		return "", err
	}
	if width <= 0 {
		return s, nil
	}
	if len(s) > width {
		return "", &InvalidFormatError{Input: raw, Reason: "too many digits"}
	}
	return strings.Repeat("0", width-len(s)) + s, nil
}

// Decode parses a digit string and places the decimal point decimalPlaces from the right.
func Decode(raw string, decimalPlaces int) (decimal.Decimal, error) {
	if err := checkDigits(raw); err != nil {
		return decimal.Zero, err
	}
	if decimalPlaces < 0 {
		return decimal.Zero, &InvalidFormatError{Input: raw, Reason: "negative decimal places"}
	}
	n, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &InvalidFormatError{Input: raw, Reason: err.Error()}
	}
	return n.Shift(-int32(decimalPlaces)), nil
}

// EncodeForDisplay is the inverse of Decode: the digits of v with the decimal
// point removed, left-padded so at least one digit precedes the implied point.
// Digits beyond decimalPlaces are truncated.
func EncodeForDisplay(v decimal.Decimal, decimalPlaces int) string {
	digits := v.Abs().Shift(int32(decimalPlaces)).Truncate(0).String()
	if want := decimalPlaces + 1; len(digits) < want {
		digits = strings.Repeat("0", want-len(digits)) + digits
	}
	return digits
}

// FormatValue renders v with exactly decimalPlaces fractional digits ("152.00").
func FormatValue(v decimal.Decimal, decimalPlaces int) string {
	return v.StringFixed(int32(decimalPlaces))
}

func checkDigits(s string) error {
	if s == "" {
		return &InvalidFormatError{Input: s, Reason: "empty"}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return &InvalidFormatError{Input: s, Reason: "digits only"}
		}
	}
	return nil
}

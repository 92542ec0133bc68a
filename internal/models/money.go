package models

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a text amount cannot be parsed.
var ErrInvalidAmount = errors.New("invalid amount")

// Money is an amount in cents. It encodes to JSON as a plain decimal number
// (200, 12.5, 12.34) so stored records stay compatible with clients that
// keep amounts as floating point numbers.
type Money int64

// MaxMoney is the largest accepted amount: 100 billion currency units.
// Settings and the expense total stay at or below it so sums never overflow.
const MaxMoney Money = 100_000_000_000 * 100

// Units returns the Money value of a whole number of currency units.
func Units(units int64) Money {
	return Money(units * 100)
}

// Float64 returns the amount in currency units for display purposes.
func (m Money) Float64() float64 {
	return float64(m) / 100.0
}

// String formats the amount with exactly two decimals, e.g. "-12.50".
func (m Money) String() string {
	sign := ""
	cents := int64(m)
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Decimal formats the amount as the shortest decimal, e.g. "12.5" or "200".
func (m Money) Decimal() string {
	sign := ""
	cents := int64(m)
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	s := sign + strconv.FormatInt(cents/100, 10)
	if frac := cents % 100; frac != 0 {
		s += "." + strings.TrimRight(fmt.Sprintf("%02d", frac), "0")
	}
	return s
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal()), nil
}

// UnmarshalJSON implements json.Unmarshaler. It accepts numbers, quoted
// numbers and null (decoded as zero).
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	text := string(data)
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}

	parsed, err := ParseMoney(text)
	if err == nil {
		*m = parsed
		return nil
	}

	// Exponent notation, e.g. 1e2 or 1.23e-1.
	d, derr := decimal.NewFromString(strings.TrimSpace(text))
	if derr != nil || d.Shift(2).Abs().GreaterThan(decimal.NewFromInt(int64(MaxMoney))) {
		return fmt.Errorf("money %q: %w", text, ErrInvalidAmount)
	}
	*m = Money(d.Shift(2).Round(0).IntPart())
	return nil
}

// ParseMoney converts a decimal string to Money.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted, as is a
// leading sign. The third fractional digit rounds half-up. Empty and
// non-numeric input (including "NaN") and magnitudes above MaxMoney return
// ErrInvalidAmount; sign checks are left to the caller.
//
//	ParseMoney("12.34")  -> 1234
//	ParseMoney("12,345") -> 1235
//	ParseMoney("-5")     -> -500
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, ErrInvalidAmount
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if units > int64(MaxMoney/100) {
		return 0, ErrInvalidAmount
	}

	var cents int64
	if len(fracPart) > 0 {
		cents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			cents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				cents++
			}
		}
	}

	total := units*100 + cents
	if total > int64(MaxMoney) {
		return 0, ErrInvalidAmount
	}
	if negative {
		total = -total
	}
	return Money(total), nil
}

// ParseMoneyOrZero parses s like ParseMoney but returns zero for input that
// is not a number.
func ParseMoneyOrZero(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		return 0
	}
	return m
}

// LenientMoney decodes like Money but reads anything that is not a number
// as zero instead of failing.
type LenientMoney Money

// UnmarshalJSON implements json.Unmarshaler.
func (m *LenientMoney) UnmarshalJSON(data []byte) error {
	var parsed Money
	if err := parsed.UnmarshalJSON(data); err != nil {
		parsed = 0
	}
	*m = LenientMoney(parsed)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m LenientMoney) MarshalJSON() ([]byte, error) {
	return Money(m).MarshalJSON()
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

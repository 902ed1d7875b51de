// Package money provides exact decimal amounts for catalog prices and quotes.
//
// Amounts are backed by big.Rat so that means, percentages and products never
// accumulate floating-point error. Values are immutable; every operation
// returns a new Money. The zero value is a valid zero amount.
package money

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Money is an immutable decimal amount in the clinic currency (MXN).
type Money struct {
	amount *big.Rat
}

// FromInt creates Money from whole currency units.
func FromInt(units int64) Money {
	return Money{amount: big.NewRat(units, 1)}
}

// FromFraction creates Money from numerator/denominator, e.g. (1999, 100) is 19.99.
func FromFraction(numerator, denominator int64) Money {
	if denominator == 0 {
		panic("money: denominator cannot be zero")
	}
	return Money{amount: big.NewRat(numerator, denominator)}
}

// Parse creates Money from a decimal string such as "750", "1800.50" or "1,800".
func Parse(decimal string) (Money, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(decimal), ",", "")
	cleaned = strings.TrimPrefix(cleaned, "$")
	if cleaned == "" {
		return Money{}, fmt.Errorf("money: empty amount")
	}
	rat, ok := new(big.Rat).SetString(cleaned)
	if !ok {
		return Money{}, fmt.Errorf("money: invalid decimal %q", decimal)
	}
	return Money{amount: rat}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(decimal string) Money {
	m, err := Parse(decimal)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount.
func Zero() Money {
	return Money{amount: new(big.Rat)}
}

func (m Money) rat() *big.Rat {
	if m.amount == nil {
		return new(big.Rat)
	}
	return m.amount
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: new(big.Rat).Add(m.rat(), other.rat())}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{amount: new(big.Rat).Sub(m.rat(), other.rat())}
}

// MulInt returns m × n.
func (m Money) MulInt(n int64) Money {
	return Money{amount: new(big.Rat).Mul(m.rat(), big.NewRat(n, 1))}
}

// MulFraction returns m × numerator/denominator.
func (m Money) MulFraction(numerator, denominator int64) Money {
	if denominator == 0 {
		panic("money: denominator cannot be zero")
	}
	return Money{amount: new(big.Rat).Mul(m.rat(), big.NewRat(numerator, denominator))}
}

// Percent returns pct percent of m.
func (m Money) Percent(pct int) Money {
	return m.MulFraction(int64(pct), 100)
}

// Mean returns the arithmetic mean of a and b.
func Mean(a, b Money) Money {
	return a.Add(b).MulFraction(1, 2)
}

// Cmp compares m and other, returning -1, 0 or +1.
func (m Money) Cmp(other Money) int {
	return m.rat().Cmp(other.rat())
}

// Equal reports whether both amounts are identical.
func (m Money) Equal(other Money) bool {
	return m.Cmp(other) == 0
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.rat().Sign() == 0
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.rat().Sign() < 0
}

// Float64 returns the amount as a float64, for display only.
func (m Money) Float64() float64 {
	f, _ := m.rat().Float64()
	return f
}

// String returns the amount with two decimals, e.g. "750.00".
func (m Money) String() string {
	return m.rat().FloatString(2)
}

// Display returns the amount with thousands separators. Whole amounts drop
// the decimals ("1,800"); anything else keeps two ("1,800.50").
func (m Money) Display() string {
	r := m.rat()
	var s string
	if r.IsInt() {
		s = r.FloatString(0)
	} else {
		s = r.FloatString(2)
	}
	return groupThousands(s)
}

// Fixed returns the amount with two decimals and thousands separators.
func (m Money) Fixed() string {
	return groupThousands(m.rat().FloatString(2))
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + frac
}

// MarshalJSON emits the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	parsed, err := Parse(raw.String())
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

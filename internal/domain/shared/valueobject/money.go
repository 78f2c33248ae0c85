package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is the single settlement currency of the portal (ISO 4217).
const Currency = "PHP"

// Scale is the number of fractional digits money is kept at.
const Scale int32 = 2

var hundred = decimal.NewFromInt(100)

// Money is a fixed-point monetary amount with two fractional digits.
// It is immutable - all operations return new Money instances.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal, rounded to cents
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount.Round(Scale)}
}

// NewMoneyFromInt creates Money from whole currency units
func NewMoneyFromInt(units int64) Money {
	return Money{amount: decimal.NewFromInt(units)}
}

// NewMoneyFromCents creates Money from minor currency units
func NewMoneyFromCents(cents int64) Money {
	return Money{amount: decimal.New(cents, -Scale)}
}

// NewMoneyFromString parses a decimal string such as "1500.25"
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d), nil
}

// NewMoneyFromFloat creates Money from a float64, rounding to cents.
// Only for inputs that already arrive as floats (form values, config).
func NewMoneyFromFloat(amount float64) Money {
	return NewMoney(decimal.NewFromFloat(amount))
}

// Zero returns a zero amount
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Cents returns the amount in minor currency units
func (m Money) Cents() int64 {
	return m.amount.Mul(hundred).IntPart()
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Add returns the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Subtract returns the difference of both amounts
func (m Money) Subtract(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Min returns the smaller of both amounts
func (m Money) Min(other Money) Money {
	return Money{amount: decimal.Min(m.amount, other.amount)}
}

// FloorZero returns m, or zero if m is negative
func (m Money) FloorZero() Money {
	if m.amount.IsNegative() {
		return Zero()
	}
	return m
}

// Equals returns true if both amounts are equal
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

func (m Money) LessThan(other Money) bool           { return m.amount.LessThan(other.amount) }
func (m Money) GreaterThan(other Money) bool        { return m.amount.GreaterThan(other.amount) }
func (m Money) GreaterThanOrEqual(other Money) bool { return m.amount.GreaterThanOrEqual(other.amount) }

// String returns the amount with two fixed decimals
func (m Money) String() string {
	return m.amount.StringFixed(Scale)
}

// Float64 returns the amount as a float64 (may lose precision)
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// Percentage returns percent% of the amount, truncated to cents.
// Callers that split a total must absorb the remainder themselves.
func (m Money) Percentage(percent decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(percent).Div(hundred).Truncate(Scale)}
}

// SplitByPercent splits the amount by the given percentages, which must sum to 100.
// Shares are truncated to cents and the remainder goes to the last share,
// so the shares always sum to the original amount.
func (m Money) SplitByPercent(percents []decimal.Decimal) ([]Money, error) {
	if len(percents) == 0 {
		return nil, errors.New("at least one share is required")
	}
	total := decimal.Zero
	for _, p := range percents {
		if p.IsNegative() {
			return nil, errors.New("share percentage cannot be negative")
		}
		total = total.Add(p)
	}
	if !total.Equal(hundred) {
		return nil, fmt.Errorf("share percentages must sum to 100, got %s", total.String())
	}

	shares := make([]Money, len(percents))
	allocated := Zero()
	for i, p := range percents {
		if i == len(percents)-1 {
			shares[i] = m.Subtract(allocated)
			break
		}
		shares[i] = m.Percentage(p)
		allocated = allocated.Add(shares[i])
	}
	return shares, nil
}

// Sum adds up a list of amounts
func Sum(values ...Money) Money {
	total := Zero()
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// MarshalJSON encodes the amount as a JSON number with two decimals
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.amount.StringFixed(Scale)), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = d.Round(Scale)
	return nil
}

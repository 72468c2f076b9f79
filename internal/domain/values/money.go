package values

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places money is reported at.
const CurrencyPlaces int32 = 2

// Money represents an exact monetary amount. It is currency-agnostic: the
// engines compute in a single currency chosen by the caller.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates a new Money value object
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// NewMoneyFromString creates Money from a decimal string
func NewMoneyFromString(amount string) (Money, error) {
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount: %w", err)
	}

	return NewMoney(dec), nil
}

// NewMoneyFromFloat creates Money from a float64.
// Note: the float's shortest decimal representation is used, so 0.1 becomes exactly 0.1
func NewMoneyFromFloat(amount float64) Money {
	return NewMoney(decimal.NewFromFloat(amount))
}

// NewMoneyFromInt creates Money from a whole amount
func NewMoneyFromInt(amount int64) Money {
	return NewMoney(decimal.NewFromInt(amount))
}

// NewMoneyFromCents creates Money from integer cents (smallest unit)
func NewMoneyFromCents(cents int64) Money {
	return NewMoney(decimal.New(cents, -CurrencyPlaces))
}

// MustNewMoneyFromString creates Money and panics on error (for constants/tests)
func MustNewMoneyFromString(amount string) Money {
	m, err := NewMoneyFromString(amount)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero Money value
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// String returns the amount at currency precision (e.g., "123.45")
func (m Money) String() string {
	return m.amount.StringFixed(CurrencyPlaces)
}

// Exact returns the amount without rounding, padded to currency precision
// ("100" -> "100.00", "1.005" -> "1.005"). Serialised results use it.
func (m Money) Exact() string {
	places := -m.amount.Exponent()
	if places < CurrencyPlaces {
		places = CurrencyPlaces
	}
	return m.amount.StringFixed(places)
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Equal compares amounts exactly, ignoring trailing zeros
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// Compare returns -1, 0, or 1 based on comparison with other Money
func (m Money) Compare(other Money) int {
	return m.amount.Cmp(other.amount)
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Mul multiplies Money by a decimal factor
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor)}
}

// MulFloat multiplies Money by a float64 factor
func (m Money) MulFloat(factor float64) Money {
	return m.Mul(decimal.NewFromFloat(factor))
}

// Div divides Money by a decimal factor
func (m Money) Div(factor decimal.Decimal) (Money, error) {
	if factor.IsZero() {
		return Money{}, fmt.Errorf("division by zero")
	}

	return Money{amount: m.amount.Div(factor)}, nil
}

func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg()}
}

func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs()}
}

// Round rounds half away from zero to the given places (2.345 -> 2.35, -2.345 -> -2.35)
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places)}
}

// RoundToCent rounds to currency precision
func (m Money) RoundToCent() Money {
	return m.Round(CurrencyPlaces)
}

// Float64 converts to float64 for statistical functions. This is the only
// lossy conversion; callers convert back with NewMoneyFromFloat and round.
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// Max returns the larger of two amounts
func Max(a, b Money) Money {
	if a.Compare(b) >= 0 {
		return a
	}
	return b
}

// Sum adds up a list of amounts
func Sum(amounts ...Money) Money {
	total := Zero()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MarshalJSON encodes money as a decimal string so no precision is lost
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.amount.String())
}

// UnmarshalJSON accepts either a decimal string or a JSON number
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid money value: %s", string(data))
		}
		s = n.String()
	}

	money, err := NewMoneyFromString(s)
	if err != nil {
		return err
	}

	*m = money
	return nil
}

// UnmarshalText lets YAML and config decoders read plain scalars
func (m *Money) UnmarshalText(text []byte) error {
	money, err := NewMoneyFromString(string(text))
	if err != nil {
		return err
	}
	*m = money
	return nil
}

// MarshalText mirrors UnmarshalText
func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.amount.String()), nil
}

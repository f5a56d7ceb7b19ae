package money

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// minorUnits lists ISO 4217 exponents that differ from the default of 2.
var minorUnits = map[string]int32{
	"CLP": 0,
	"JPY": 0,
	"KRW": 0,
	"PYG": 0,
	"BHD": 3,
	"KWD": 3,
}

// Currency is an ISO 4217 currency code.
type Currency struct {
	code string
}

// NewCurrency creates a Currency after validating the code is exactly 3 uppercase letters.
func NewCurrency(code string) (Currency, error) {
	if !currencyCodeRe.MatchString(code) {
		return Currency{}, fmt.Errorf("invalid currency code %q: must be exactly 3 uppercase letters", code)
	}
	return Currency{code: code}, nil
}

// MustCurrency creates a Currency and panics on error. Intended for package-level variable
// initialization only.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Currency) Code() string   { return c.code }
func (c Currency) String() string { return c.code }
func (c Currency) IsZero() bool   { return c.code == "" }

// MinorUnits returns the number of decimal places used by the currency.
func (c Currency) MinorUnits() int32 {
	if n, ok := minorUnits[c.code]; ok {
		return n
	}
	return 2
}

// Common currencies.
var (
	COP = MustCurrency("COP")
	USD = MustCurrency("USD")
	EUR = MustCurrency("EUR")
	MXN = MustCurrency("MXN")
)

// Money represents an immutable monetary amount with currency.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// New creates a Money value from a decimal amount and currency.
func New(amount decimal.Decimal, currency Currency) Money {
	return Money{amount: amount, currency: currency}
}

// NewFromString parses an amount string and currency code into a Money value.
func NewFromString(amount string, currency string) (Money, error) {
	cur, err := NewCurrency(currency)
	if err != nil {
		return Money{}, fmt.Errorf("invalid currency: %w", err)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return Money{amount: d, currency: cur}, nil
}

// Zero returns a Money value of zero in the given currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Sum adds all values, which must share the given currency.
func Sum(currency Currency, values ...Money) (Money, error) {
	total := Zero(currency)
	for _, v := range values {
		var err error
		if total, err = total.Add(v); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// Add returns the sum of m and other. Returns an error if the currencies do not match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: cannot add %s to %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns the difference of m minus other. Returns an error if the currencies do not match.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: cannot subtract %s from %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Multiply returns m multiplied by the given factor.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Percent returns pct percent of m, e.g. Percent(85) of 1000 is 850.
func (m Money) Percent(pct decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(pct).Div(decimal.NewFromInt(100)), currency: m.currency}
}

// Round rounds half away from zero to the currency's minor units.
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(m.currency.MinorUnits()), currency: m.currency}
}

// Cmp compares the amounts of m and other, ignoring currency.
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// GreaterThan reports whether m is strictly larger than other in the same currency.
func (m Money) GreaterThan(other Money) bool {
	return m.currency == other.currency && m.amount.GreaterThan(other.amount)
}

// Equal returns true if both the amount and currency of m and other are equal.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String formats the value with the currency's minor units, e.g. "1500000.00 COP".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(m.currency.MinorUnits()), m.currency.Code())
}

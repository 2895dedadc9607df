package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrOverflow         = errors.New("money: amount out of range")
)

var (
	maxAmount = decimal.NewFromInt(math.MaxInt64)
	minAmount = decimal.NewFromInt(math.MinInt64)
)

// Money stores amounts in the smallest currency unit so no float ever touches a price.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// New constructs a Money value validating the ISO-4217 shaped code.
func New(amount int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Add adds two values of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return m.fromDecimal(decimal.NewFromInt(m.Amount).Add(decimal.NewFromInt(other.Amount)))
}

// Multiply scales the amount by an integer factor.
func (m Money) Multiply(times int64) (Money, error) {
	return m.fromDecimal(decimal.NewFromInt(m.Amount).Mul(decimal.NewFromInt(times)))
}

// MulRate multiplies by a decimal rate and rounds half-up to the minor unit.
func (m Money) MulRate(rate decimal.Decimal) (Money, error) {
	return m.fromDecimal(decimal.NewFromInt(m.Amount).Mul(rate).Round(0))
}

// Min returns the smaller of the two values. Currencies must match.
func (m Money) Min(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	if other.Amount < m.Amount {
		return other, nil
	}
	return m, nil
}

func (m Money) fromDecimal(v decimal.Decimal) (Money, error) {
	if v.GreaterThan(maxAmount) || v.LessThan(minAmount) {
		return Money{}, ErrOverflow
	}
	return Money{Amount: v.IntPart(), Currency: m.Currency}, nil
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}

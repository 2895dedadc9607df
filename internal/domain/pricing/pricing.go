package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var ErrInvalidInput = errors.New("pricing: invalid input")

var hundred = decimal.NewFromInt(100)

// RateConfig holds a property's tariff. Amounts are in minor currency units.
type RateConfig struct {
	Currency              string          `json:"currency"`
	BaseRate              int64           `json:"base_rate"`
	CleaningFee           int64           `json:"cleaning_fee"`
	SecurityDeposit       int64           `json:"security_deposit"`
	WeekendPremiumPercent decimal.Decimal `json:"weekend_premium_percent"`
	ServiceFeeRate        decimal.Decimal `json:"service_fee_rate"`
	MaxServiceFee         int64           `json:"max_service_fee"`
}

// NewRateConfig normalises the currency and validates the tariff.
func NewRateConfig(cfg RateConfig) (RateConfig, error) {
	unit, err := money.New(0, cfg.Currency)
	if err != nil {
		return RateConfig{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	cfg.Currency = unit.Currency
	if err := cfg.Validate(); err != nil {
		return RateConfig{}, err
	}
	return cfg, nil
}

func (r RateConfig) Validate() error {
	switch {
	case len(r.Currency) != 3:
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidInput)
	case r.BaseRate <= 0:
		return fmt.Errorf("%w: base rate must be positive", ErrInvalidInput)
	case r.CleaningFee < 0:
		return fmt.Errorf("%w: cleaning fee cannot be negative", ErrInvalidInput)
	case r.SecurityDeposit < 0:
		return fmt.Errorf("%w: security deposit cannot be negative", ErrInvalidInput)
	case r.WeekendPremiumPercent.IsNegative():
		return fmt.Errorf("%w: weekend premium cannot be negative", ErrInvalidInput)
	case r.ServiceFeeRate.IsNegative() || r.ServiceFeeRate.GreaterThan(decimal.NewFromInt(1)):
		return fmt.Errorf("%w: service fee rate must be within [0, 1]", ErrInvalidInput)
	case r.MaxServiceFee <= 0:
		return fmt.Errorf("%w: max service fee must be positive", ErrInvalidInput)
	}
	return nil
}

func (r RateConfig) amount(v int64) money.Money {
	return money.Money{Amount: v, Currency: r.Currency}
}

// Breakdown is the itemised price of a stay. SecurityDeposit is held
// separately and is never part of Total.
type Breakdown struct {
	Nights           int         `json:"nights"`
	WeekendNights    int         `json:"weekend_nights"`
	NightlyRate      money.Money `json:"nightly_rate"`
	WeekendSurcharge money.Money `json:"weekend_surcharge"`
	Subtotal         money.Money `json:"subtotal"`
	CleaningFee      money.Money `json:"cleaning_fee"`
	ServiceFee       money.Money `json:"service_fee"`
	Total            money.Money `json:"total"`
	SecurityDeposit  money.Money `json:"security_deposit"`
}

// Calculate prices a stay of the given number of nights at the flat base rate.
func Calculate(nights int, rates RateConfig) (Breakdown, error) {
	return calculate(nights, 0, rates)
}

// CalculateStay prices the stay night by night. Nights whose local calendar
// date in loc is a Saturday or Sunday carry the weekend premium. A nil loc
// means UTC.
func CalculateStay(stay daterange.DateRange, rates RateConfig, loc *time.Location) (Breakdown, error) {
	weekend := 0
	for _, date := range stay.NightDates(loc) {
		switch date.Weekday() {
		case time.Saturday, time.Sunday:
			weekend++
		}
	}
	return calculate(stay.Nights(), weekend, rates)
}

func calculate(nights, weekendNights int, rates RateConfig) (Breakdown, error) {
	if nights <= 0 {
		return Breakdown{}, fmt.Errorf("%w: nights must be positive, got %d", ErrInvalidInput, nights)
	}
	if err := rates.Validate(); err != nil {
		return Breakdown{}, err
	}

	nightly := rates.amount(rates.BaseRate)
	base, err := nightly.Multiply(int64(nights))
	if err != nil {
		return Breakdown{}, outOfRange(err)
	}
	// Rounded once over all weekend nights, not per night.
	premium := rates.WeekendPremiumPercent.Div(hundred).Mul(decimal.NewFromInt(int64(weekendNights)))
	surcharge, err := nightly.MulRate(premium)
	if err != nil {
		return Breakdown{}, outOfRange(err)
	}
	subtotal, err := base.Add(surcharge)
	if err != nil {
		return Breakdown{}, outOfRange(err)
	}
	fee, err := subtotal.MulRate(rates.ServiceFeeRate)
	if err != nil {
		return Breakdown{}, outOfRange(err)
	}
	serviceFee, err := fee.Min(rates.amount(rates.MaxServiceFee))
	if err != nil {
		return Breakdown{}, err
	}
	cleaning := rates.amount(rates.CleaningFee)
	total, err := subtotal.Add(cleaning)
	if err == nil {
		total, err = total.Add(serviceFee)
	}
	if err != nil {
		return Breakdown{}, outOfRange(err)
	}

	return Breakdown{
		Nights:           nights,
		WeekendNights:    weekendNights,
		NightlyRate:      nightly,
		WeekendSurcharge: surcharge,
		Subtotal:         subtotal,
		CleaningFee:      cleaning,
		ServiceFee:       serviceFee,
		Total:            total,
		SecurityDeposit:  rates.amount(rates.SecurityDeposit),
	}, nil
}

func outOfRange(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

package dto

import (
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

type PriceBreakdown struct {
	Nights           int      `json:"nights"`
	WeekendNights    int      `json:"weekend_nights"`
	NightlyRate      MoneyDTO `json:"nightly_rate"`
	WeekendSurcharge MoneyDTO `json:"weekend_surcharge"`
	Subtotal         MoneyDTO `json:"subtotal"`
	CleaningFee      MoneyDTO `json:"cleaning_fee"`
	ServiceFee       MoneyDTO `json:"service_fee"`
	Total            MoneyDTO `json:"total"`
	SecurityDeposit  MoneyDTO `json:"security_deposit"`
}

func MapBreakdown(b pricing.Breakdown) PriceBreakdown {
	return PriceBreakdown{
		Nights:           b.Nights,
		WeekendNights:    b.WeekendNights,
		NightlyRate:      MapMoney(b.NightlyRate),
		WeekendSurcharge: MapMoney(b.WeekendSurcharge),
		Subtotal:         MapMoney(b.Subtotal),
		CleaningFee:      MapMoney(b.CleaningFee),
		ServiceFee:       MapMoney(b.ServiceFee),
		Total:            MapMoney(b.Total),
		SecurityDeposit:  MapMoney(b.SecurityDeposit),
	}
}

// RateConfig mirrors pricing.RateConfig with decimals rendered as strings.
type RateConfig struct {
	Currency              string `json:"currency"`
	BaseRate              int64  `json:"base_rate"`
	CleaningFee           int64  `json:"cleaning_fee"`
	SecurityDeposit       int64  `json:"security_deposit"`
	WeekendPremiumPercent string `json:"weekend_premium_percent"`
	ServiceFeeRate        string `json:"service_fee_rate"`
	MaxServiceFee         int64  `json:"max_service_fee"`
}

func MapRates(r pricing.RateConfig) RateConfig {
	return RateConfig{
		Currency:              r.Currency,
		BaseRate:              r.BaseRate,
		CleaningFee:           r.CleaningFee,
		SecurityDeposit:       r.SecurityDeposit,
		WeekendPremiumPercent: r.WeekendPremiumPercent.String(),
		ServiceFeeRate:        r.ServiceFeeRate.String(),
		MaxServiceFee:         r.MaxServiceFee,
	}
}

// Quote is the outcome of evaluating a stay without booking it.
type Quote struct {
	PropertyID string          `json:"property_id"`
	Accepted   bool            `json:"accepted"`
	Breakdown  *PriceBreakdown `json:"breakdown,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
	Conflicts  []Reservation   `json:"conflicts,omitempty"`
}

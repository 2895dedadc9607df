package properties

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/pricing"
)

var now = time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

func validParams() CreateParams {
	return CreateParams{
		ID:        "prop-1",
		Host:      "host-1",
		Title:     "  Villa Ubud ",
		Address:   Address{Line1: "Jl. Raya 1", City: "Ubud", Country: "ID"},
		TimeZone:  "UTC",
		MaxGuests: 4,
		MinNights: 2,
		MaxNights: 14,
		Rates: pricing.RateConfig{
			Currency:       "idr",
			BaseRate:       100000,
			CleaningFee:    20000,
			ServiceFeeRate: decimal.RequireFromString("0.05"),
			MaxServiceFee:  5000,
		},
		Now: now,
	}
}

func TestNewPropertyRecordsCreation(t *testing.T) {
	p, err := NewProperty(validParams())
	require.NoError(t, err)

	assert.Equal(t, "Villa Ubud", p.Title)
	assert.Equal(t, "IDR", p.Rates.Currency)
	assert.True(t, p.Bookable())
	events := p.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "property.created", events[0].EventName())
}

func TestNewPropertyValidation(t *testing.T) {
	tests := map[string]struct {
		mutate func(*CreateParams)
		want   error
	}{
		"missing title":  {func(p *CreateParams) { p.Title = " " }, ErrTitleRequired},
		"missing host":   {func(p *CreateParams) { p.Host = "" }, ErrHostRequired},
		"no address":     {func(p *CreateParams) { p.Address = Address{} }, ErrAddressRequired},
		"no guests":      {func(p *CreateParams) { p.MaxGuests = 0 }, ErrGuestsLimit},
		"nights swapped": {func(p *CreateParams) { p.MinNights, p.MaxNights = 5, 3 }, ErrNightsRange},
		"bad zone":       {func(p *CreateParams) { p.TimeZone = "Mars/Olympus" }, ErrInvalidTimeZone},
		"bad rates":      {func(p *CreateParams) { p.Rates.BaseRate = 0 }, pricing.ErrInvalidInput},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)
			_, err := NewProperty(params)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateRates(t *testing.T) {
	p, err := NewProperty(validParams())
	require.NoError(t, err)
	p.ClearEvents()

	rates := p.Rates
	rates.BaseRate = 150000
	require.NoError(t, p.UpdateRates(rates, now.Add(time.Hour)))
	assert.Equal(t, int64(150000), p.Rates.BaseRate)
	require.Len(t, p.PendingEvents(), 1)

	rates.MaxServiceFee = 0
	assert.ErrorIs(t, p.UpdateRates(rates, now), pricing.ErrInvalidInput)

	require.NoError(t, p.Archive(now))
	assert.ErrorIs(t, p.UpdateRates(p.Rates, now), ErrInvalidState)
}

func TestApplyRatingKeepsRunningAverage(t *testing.T) {
	p, err := NewProperty(validParams())
	require.NoError(t, err)

	p.ApplyRating(5, now)
	p.ApplyRating(4, now)
	p.ApplyRating(4, now)
	assert.Equal(t, 3, p.ReviewCount)
	assert.InDelta(t, 4.33, p.Rating, 0.001)
}

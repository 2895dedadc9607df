package bootstrap_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/bootstrap"
	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	propertiesapp "staybook/internal/app/handlers/properties"
	"staybook/internal/app/middleware"
	"staybook/internal/app/queries"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/infra/storage/memory"
)

var now = time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	factory memory.Factory
	events  *memory.Outbox
	idemp   *memory.IdempotencyStore
	buses   bootstrap.Buses
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		factory: memory.NewFactory(),
		events:  memory.NewOutbox(),
		idemp:   memory.NewIdempotencyStore(),
	}
	ids := 0
	h.buses = bootstrap.NewBuses(bootstrap.Deps{
		UoW:         h.factory,
		Events:      h.events,
		Idempotency: h.idemp,
		Policy:      domainbooking.StayPolicy{MinAdvanceHours: 24, MaxAdvanceDays: 365, MinStayNights: 1, MaxStayNights: 30},
		Clock:       func() time.Time { return now },
		IDGenerator: func() string { ids++; return "id-" + strconv.Itoa(ids) },
	})

	_, err := commands.Dispatch[propertiesapp.CreatePropertyCommand, dto.Property](context.Background(), h.buses.Commands, propertiesapp.CreatePropertyCommand{
		PropertyID: "prop-1",
		HostID:     "host-1",
		Title:      "Ubud cabin",
		Address:    domainproperties.Address{Line1: "Jl. Raya 5", City: "Ubud", Country: "ID"},
		TimeZone:   "UTC",
		MaxGuests:  4,
		Rates: pricing.RateConfig{
			Currency:       "IDR",
			BaseRate:       100000,
			CleaningFee:    20000,
			ServiceFeeRate: decimal.RequireFromString("0.05"),
			MaxServiceFee:  5000,
		},
	})
	require.NoError(t, err)
	return h
}

func (h *harness) request(key string) (*bookingapp.RequestBookingResult, error) {
	return commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](context.Background(), h.buses.Commands, bookingapp.RequestBookingCommand{
		BookingID:       "b-" + key,
		PropertyID:      "prop-1",
		GuestID:         "guest-1",
		CheckIn:         time.Date(2025, time.January, 10, 15, 0, 0, 0, time.UTC),
		CheckOut:        time.Date(2025, time.January, 13, 11, 0, 0, 0, time.UTC),
		Guests:          2,
		IdempotencyKeyV: key,
	})
}

func TestCommandEventsReachSinkAfterCommit(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{"property.created"}, h.events.Names())

	res, err := h.request("k1")
	require.NoError(t, err)
	assert.Equal(t, int64(325000), res.Booking.Price.Total.Amount)
	assert.Equal(t, []string{"property.created", "booking.requested"}, h.events.Names())
}

func TestIdempotentRequestReplaysFirstResult(t *testing.T) {
	h := newHarness(t)

	first, err := h.request("k1")
	require.NoError(t, err)

	// The replay carries a different booking id but must return the stored one.
	second, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](context.Background(), h.buses.Commands, bookingapp.RequestBookingCommand{
		BookingID:       "b-other",
		PropertyID:      "prop-1",
		GuestID:         "guest-1",
		CheckIn:         time.Date(2025, time.January, 10, 15, 0, 0, 0, time.UTC),
		CheckOut:        time.Date(2025, time.January, 13, 11, 0, 0, 0, time.UTC),
		Guests:          2,
		IdempotencyKeyV: "k1",
	})
	require.NoError(t, err)
	assert.Equal(t, first.Booking.ID, second.Booking.ID)

	stored, err := h.factory.BookingsRepo.ListByGuest(context.Background(), "guest-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Equal(t, []string{"property.created", "booking.requested"}, h.events.Names())
}

func TestRejectedRequestIsNotRemembered(t *testing.T) {
	h := newHarness(t)
	_, err := h.request("k1")
	require.NoError(t, err)

	_, err = h.request("k2")
	var rejection *bookingapp.RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, bookingapp.RejectedUnavailable, rejection.Kind)
	require.Len(t, rejection.Conflicts, 1)

	_, found, err := h.idemp.Get(context.Background(), "guest-1:k2")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []string{"property.created", "booking.requested"}, h.events.Names())
}

func TestIdempotencyKeyReuseAcrossCommands(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.idemp.Save(context.Background(), middleware.IdempotencyRecord{
		Key:     "guest-1:k9",
		Command: "properties.create",
		Payload: []byte(`{}`),
	}))

	_, err := h.request("k9")
	assert.ErrorIs(t, err, middleware.ErrIdempotencyKeyReuse)
}

func TestValidationRunsBeforeHandlers(t *testing.T) {
	h := newHarness(t)
	_, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](context.Background(), h.buses.Commands, bookingapp.RequestBookingCommand{
		BookingID: "b-1",
		GuestID:   "guest-1",
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidRequest)

	_, err = queries.Ask[bookingapp.QuoteBookingQuery, dto.Quote](context.Background(), h.buses.Queries, bookingapp.QuoteBookingQuery{PropertyID: "prop-1"})
	assert.ErrorIs(t, err, middleware.ErrInvalidRequest)
}

func TestQueriesSeeCommittedState(t *testing.T) {
	h := newHarness(t)
	_, err := h.request("k1")
	require.NoError(t, err)

	hostView, err := queries.Ask[bookingapp.ListHostBookingsQuery, dto.BookingCollection](context.Background(), h.buses.Queries, bookingapp.ListHostBookingsQuery{HostID: "host-1"})
	require.NoError(t, err)
	require.Len(t, hostView.Items, 1)
	assert.Equal(t, "PENDING", hostView.Items[0].Status)

	quote, err := queries.Ask[bookingapp.QuoteBookingQuery, dto.Quote](context.Background(), h.buses.Queries, bookingapp.QuoteBookingQuery{
		PropertyID: "prop-1",
		CheckIn:    time.Date(2025, time.January, 13, 11, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, time.January, 15, 11, 0, 0, 0, time.UTC),
		Guests:     1,
	})
	require.NoError(t, err)
	assert.True(t, quote.Accepted, "back-to-back stay is free")
}

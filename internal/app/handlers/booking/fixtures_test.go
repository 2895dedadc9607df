package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/outbox"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/infra/storage/memory"
)

var now = time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

func jan(day, hour int) time.Time {
	return time.Date(2025, time.January, day, hour, 0, 0, 0, time.UTC)
}

var policy = domainbooking.StayPolicy{MinAdvanceHours: 24, MaxAdvanceDays: 365, MinStayNights: 1, MaxStayNights: 30}

type env struct {
	factory memory.Factory
	sink    *memory.Outbox
	box     outbox.Deferred
	metrics *recorder
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{factory: memory.NewFactory(), sink: memory.NewOutbox(), metrics: &recorder{}}
	e.box = outbox.Deferred{Sink: e.sink}

	property, err := domainproperties.NewProperty(domainproperties.CreateParams{
		ID:        "prop-1",
		Host:      "host-1",
		Title:     "Canggu villa",
		Address:   domainproperties.Address{Line1: "Jl. Pantai 1", City: "Canggu", Country: "ID"},
		TimeZone:  "UTC",
		MaxGuests: 4,
		MinNights: 2,
		Rates: pricing.RateConfig{
			Currency:       "IDR",
			BaseRate:       100000,
			CleaningFee:    20000,
			ServiceFeeRate: decimal.RequireFromString("0.05"),
			MaxServiceFee:  5000,
		},
		Now: now.Add(-48 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, e.factory.PropertiesRepo.Save(context.Background(), property))
	return e
}

func (e *env) requestHandler() *RequestBookingHandler {
	return &RequestBookingHandler{
		UoWFactory: e.factory,
		Outbox:     e.box,
		Policy:     policy,
		Clock:      func() time.Time { return now },
		Metrics:    e.metrics,
	}
}

func (e *env) seedBooking(t *testing.T, id string, checkIn, checkOut time.Time) *domainbooking.Booking {
	t.Helper()
	_, err := e.requestHandler().Handle(context.Background(), RequestBookingCommand{
		BookingID:  id,
		PropertyID: "prop-1",
		GuestID:    "guest-" + id,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     2,
	})
	require.NoError(t, err)
	b, err := e.factory.BookingsRepo.ByID(context.Background(), domainbooking.BookingID(id))
	require.NoError(t, err)
	return b
}

type recorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recorder) ObserveEvaluation(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recorder) count(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.outcomes {
		if o == outcome {
			n++
		}
	}
	return n
}

// countingBookings records storage reads and can hold readers at a barrier.
type countingBookings struct {
	*memory.BookingRepository
	mu      sync.Mutex
	reads   int
	barrier *sync.WaitGroup
}

func (c *countingBookings) ActiveByProperty(ctx context.Context, id domainproperties.PropertyID) ([]domainbooking.ExistingReservation, error) {
	out, err := c.BookingRepository.ActiveByProperty(ctx, id)
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	if c.barrier != nil {
		c.barrier.Done()
		c.barrier.Wait()
	}
	return out, err
}

func (c *countingBookings) readCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func outboxCtx() context.Context {
	return outbox.WithBuffer(context.Background())
}

package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/infra/storage/memory"
)

func (e *env) quoteHandler() *QuoteBookingHandler {
	return &QuoteBookingHandler{UoWFactory: e.factory, Policy: policy, Clock: func() time.Time { return now }, Metrics: e.metrics}
}

func TestQuoteAccepted(t *testing.T) {
	e := newEnv(t)
	quote, err := e.quoteHandler().Handle(context.Background(), QuoteBookingQuery{
		PropertyID: "prop-1",
		CheckIn:    jan(10, 15),
		CheckOut:   jan(13, 11),
	})
	require.NoError(t, err)
	assert.True(t, quote.Accepted)
	require.NotNil(t, quote.Breakdown)
	assert.Equal(t, int64(300000), quote.Breakdown.Subtotal.Amount)
	assert.Equal(t, int64(5000), quote.Breakdown.ServiceFee.Amount)
	assert.Equal(t, int64(325000), quote.Breakdown.Total.Amount)
	assert.Empty(t, quote.Errors)

	active, err := e.factory.BookingsRepo.ActiveByProperty(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Empty(t, active, "quotes never hold dates")
}

func TestQuoteReportsConflicts(t *testing.T) {
	e := newEnv(t)
	e.seedBooking(t, "existing", jan(10, 14), jan(15, 11))

	quote, err := e.quoteHandler().Handle(context.Background(), QuoteBookingQuery{
		PropertyID: "prop-1",
		CheckIn:    jan(12, 14),
		CheckOut:   jan(20, 11),
	})
	require.NoError(t, err)
	assert.False(t, quote.Accepted)
	assert.Nil(t, quote.Breakdown)
	assert.Equal(t, []string{domainbooking.ReasonUnavailable}, quote.Errors)
	require.Len(t, quote.Conflicts, 1)
	assert.Equal(t, "existing", quote.Conflicts[0].ID)
}

func TestQuoteDateErrorsSkipStorage(t *testing.T) {
	e := newEnv(t)
	counting := &countingBookings{BookingRepository: e.factory.BookingsRepo.(*memory.BookingRepository)}
	e.factory.BookingsRepo = counting

	quote, err := e.quoteHandler().Handle(context.Background(), QuoteBookingQuery{
		PropertyID: "prop-1",
		CheckIn:    jan(13, 11),
		CheckOut:   jan(10, 11),
	})
	require.NoError(t, err)
	assert.False(t, quote.Accepted)
	assert.Equal(t, []string{"Check-out must be after check-in", "Minimum stay is 2 nights"}, quote.Errors)
	assert.Zero(t, counting.readCount())
}

func TestListBookingsForGuestAndHost(t *testing.T) {
	e := newEnv(t)
	e.seedBooking(t, "b-1", jan(10, 14), jan(13, 11))
	e.seedBooking(t, "b-2", jan(20, 14), jan(23, 11))
	_, err := e.lifecycle(now).Reject().Handle(context.Background(), RejectBookingCommand{HostID: "host-1", BookingID: "b-2"})
	require.NoError(t, err)

	lists := &ListBookingsHandler{UoWFactory: e.factory}
	mine, err := lists.Guest().Handle(context.Background(), ListGuestBookingsQuery{GuestID: "guest-b-1"})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, "b-1", mine.Items[0].ID)

	hosted, err := lists.Host().Handle(context.Background(), ListHostBookingsQuery{HostID: "host-1"})
	require.NoError(t, err)
	assert.Len(t, hosted.Items, 2)

	pending, err := lists.Host().Handle(context.Background(), ListHostBookingsQuery{HostID: "host-1", Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, "b-1", pending.Items[0].ID)
}

package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

const quoteBookingKey = "booking.quote"

// QuoteBookingQuery prices a stay the same way a request would, without
// holding the dates.
type QuoteBookingQuery struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
}

func (q QuoteBookingQuery) Key() string { return quoteBookingKey }

func (q QuoteBookingQuery) Validate() error {
	if strings.TrimSpace(q.PropertyID) == "" {
		return errors.New("property id is required")
	}
	if q.CheckIn.IsZero() || q.CheckOut.IsZero() {
		return errors.New("check-in and check-out are required")
	}
	return nil
}

type QuoteBookingHandler struct {
	UoWFactory uow.UoWFactory
	Policy     domainbooking.StayPolicy
	Clock      func() time.Time
	Metrics    EvaluationRecorder
	Logger     *slog.Logger
}

func (h *QuoteBookingHandler) Handle(ctx context.Context, q QuoteBookingQuery) (dto.Quote, error) {
	guests := q.Guests
	if guests <= 0 {
		guests = 1
	}
	var quote dto.Quote
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		eval, err := evaluateStay(ctx, unit, h.Policy, clockOrNow(h.Clock), stayRequest{
			PropertyID: q.PropertyID,
			CheckIn:    q.CheckIn,
			CheckOut:   q.CheckOut,
			Guests:     guests,
		})
		if err != nil {
			return err
		}
		if h.Metrics != nil {
			h.Metrics.ObserveEvaluation(outcomeOf(eval.Result))
		}
		quote = dto.Quote{PropertyID: string(eval.Property.ID)}
		switch r := eval.Result.(type) {
		case domainbooking.Accepted:
			b := dto.MapBreakdown(r.Breakdown)
			quote.Accepted = true
			quote.Breakdown = &b
		case domainbooking.Rejected:
			quote.Errors = r.Reasons
			if len(r.Conflicts) > 0 {
				quote.Conflicts = dto.MapReservations(r.Conflicts)
			}
		}
		return nil
	})
	if err != nil {
		return dto.Quote{}, err
	}
	if h.Logger != nil {
		h.Logger.Debug("booking quoted", "property_id", q.PropertyID, "accepted", quote.Accepted)
	}
	return quote, nil
}

var _ queries.Handler[QuoteBookingQuery, dto.Quote] = (*QuoteBookingHandler)(nil)

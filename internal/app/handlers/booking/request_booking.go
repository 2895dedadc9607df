package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

const requestBookingKey = "booking.request"

type RequestBookingCommand struct {
	BookingID       string
	PropertyID      string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string {
	if c.IdempotencyKeyV == "" {
		return ""
	}
	return c.GuestID + ":" + c.IdempotencyKeyV
}

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

func (c RequestBookingCommand) Validate() error {
	switch {
	case strings.TrimSpace(c.BookingID) == "":
		return errors.New("booking id is required")
	case strings.TrimSpace(c.PropertyID) == "":
		return errors.New("property id is required")
	case strings.TrimSpace(c.GuestID) == "":
		return errors.New("guest id is required")
	case c.CheckIn.IsZero() || c.CheckOut.IsZero():
		return errors.New("check-in and check-out are required")
	case c.Guests <= 0:
		return domainbooking.ErrInvalidGuests
	}
	return nil
}

type RequestBookingResult struct {
	Booking dto.Booking `json:"booking"`
}

// RequestBookingHandler evaluates a stay and persists it as PENDING. The
// evaluator's availability verdict is advisory: the repository refuses
// overlapping writes, and that refusal is reported as the same rejection.
type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Policy     domainbooking.StayPolicy
	Clock      func() time.Time
	Metrics    EvaluationRecorder
	Logger     *slog.Logger
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	now := clockOrNow(h.Clock)
	var result *RequestBookingResult
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		eval, err := evaluateStay(ctx, unit, h.Policy, now, stayRequest{
			PropertyID: cmd.PropertyID,
			CheckIn:    cmd.CheckIn,
			CheckOut:   cmd.CheckOut,
			Guests:     cmd.Guests,
		})
		if err != nil {
			return err
		}
		h.observe(outcomeOf(eval.Result))

		var accepted domainbooking.Accepted
		switch r := eval.Result.(type) {
		case domainbooking.Rejected:
			return rejectionFrom(r)
		case domainbooking.Accepted:
			accepted = r
		}

		booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
			ID:         domainbooking.BookingID(cmd.BookingID),
			PropertyID: eval.Property.ID,
			HostID:     eval.Property.Host,
			GuestID:    cmd.GuestID,
			Range:      eval.Range,
			Guests:     cmd.Guests,
			Price:      accepted.Breakdown,
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, booking); err != nil {
			if errors.Is(err, domainbooking.ErrOverlappingReservation) {
				h.observe(OutcomeRejectedOnPersist)
				if h.Logger != nil {
					h.Logger.Info("booking lost overlap race", "property_id", eval.Property.ID, "guest_id", cmd.GuestID)
				}
				return &RejectionError{Kind: RejectedUnavailable, Reasons: []string{domainbooking.ReasonUnavailable}}
			}
			return err
		}
		if err := outbox.Collect(ctx, h.Outbox, h.Encoder, booking); err != nil {
			return err
		}
		result = &RequestBookingResult{Booking: dto.MapBooking(booking)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking requested",
			"booking_id", result.Booking.ID,
			"property_id", result.Booking.PropertyID,
			"guest_id", cmd.GuestID,
			"total", result.Booking.Price.Total.Amount,
		)
	}
	return result, nil
}

func (h *RequestBookingHandler) observe(outcome string) {
	if h.Metrics != nil {
		h.Metrics.ObserveEvaluation(outcome)
	}
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = RequestBookingCommand{}

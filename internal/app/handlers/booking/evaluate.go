package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
)

var (
	ErrPropertyUnavailable = errors.New("booking: property is not accepting bookings")
	ErrTooManyGuests       = errors.New("booking: guests exceed property capacity")
	ErrBookingNotOwned     = errors.New("booking: not owned by caller")
)

// Evaluation outcomes reported to metrics.
const (
	OutcomeAccepted          = "accepted"
	OutcomeRejectedDates     = "rejected_dates"
	OutcomeRejectedConflict  = "rejected_conflict"
	OutcomeRejectedOnPersist = "rejected_on_persist"
)

// EvaluationRecorder observes evaluation outcomes.
type EvaluationRecorder interface {
	ObserveEvaluation(outcome string)
}

type RejectionKind string

const (
	RejectedDates       RejectionKind = "dates"
	RejectedUnavailable RejectionKind = "unavailable"
)

// RejectionError carries a user-facing rejection through the command bus.
type RejectionError struct {
	Kind      RejectionKind
	Reasons   []string
	Conflicts []domainbooking.ExistingReservation
}

func (e *RejectionError) Error() string {
	return "booking rejected: " + strings.Join(e.Reasons, "; ")
}

func rejectionFrom(r domainbooking.Rejected) *RejectionError {
	kind := RejectedDates
	if len(r.Reasons) == 1 && r.Reasons[0] == domainbooking.ReasonUnavailable {
		kind = RejectedUnavailable
	}
	return &RejectionError{Kind: kind, Reasons: r.Reasons, Conflicts: r.Conflicts}
}

// repositorySource loads active reservations on first use so that requests
// rejected on their dates never query storage.
type repositorySource struct {
	ctx        context.Context
	repo       domainbooking.Repository
	propertyID domainproperties.PropertyID
	loaded     bool
	err        error
	items      []domainbooking.ExistingReservation
}

func (s *repositorySource) Reservations() []domainbooking.ExistingReservation {
	if !s.loaded {
		s.items, s.err = s.repo.ActiveByProperty(s.ctx, s.propertyID)
		s.loaded = true
	}
	return s.items
}

type stayRequest struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
}

type evaluation struct {
	Property *domainproperties.Property
	Range    daterange.DateRange
	Result   domainbooking.Result
}

// evaluateStay loads the property and runs the booking evaluator against the
// reservations visible to unit.
func evaluateStay(ctx context.Context, unit uow.UnitOfWork, policy domainbooking.StayPolicy, now time.Time, req stayRequest) (evaluation, error) {
	property, err := unit.Properties().ByID(ctx, domainproperties.PropertyID(req.PropertyID))
	if err != nil {
		return evaluation{}, err
	}
	if !property.Bookable() {
		return evaluation{}, ErrPropertyUnavailable
	}
	if req.Guests > property.MaxGuests {
		return evaluation{}, fmt.Errorf("%w: max %d", ErrTooManyGuests, property.MaxGuests)
	}

	dr := daterange.DateRange{CheckIn: req.CheckIn.UTC(), CheckOut: req.CheckOut.UTC()}
	src := &repositorySource{ctx: ctx, repo: unit.Bookings(), propertyID: property.ID}
	result, err := domainbooking.Evaluate(domainbooking.Request{
		Range:        dr,
		Now:          now,
		Policy:       policy.WithStayLimits(property.MinNights, property.MaxNights),
		Rates:        property.Rates,
		Location:     property.Location(),
		Reservations: src,
	})
	if err != nil {
		return evaluation{}, err
	}
	if src.err != nil {
		return evaluation{}, src.err
	}
	return evaluation{Property: property, Range: dr, Result: result}, nil
}

func outcomeOf(result domainbooking.Result) string {
	switch r := result.(type) {
	case domainbooking.Accepted:
		return OutcomeAccepted
	case domainbooking.Rejected:
		if rejectionFrom(r).Kind == RejectedUnavailable {
			return OutcomeRejectedConflict
		}
	}
	return OutcomeRejectedDates
}

func clockOrNow(clock func() time.Time) time.Time {
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}

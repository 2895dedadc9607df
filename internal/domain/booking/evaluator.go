package booking

import (
	"errors"
	"time"

	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
)

// ReasonUnavailable is the rejection reason for calendar conflicts.
const ReasonUnavailable = "Property not available for selected dates"

// ReservationSource yields a consistent snapshot of a property's reservations.
// It is only consulted once the requested dates pass validation.
type ReservationSource interface {
	Reservations() []ExistingReservation
}

// Snapshot is an in-memory ReservationSource.
type Snapshot []ExistingReservation

func (s Snapshot) Reservations() []ExistingReservation { return s }

type Request struct {
	Range        daterange.DateRange
	Now          time.Time
	Policy       StayPolicy
	Rates        pricing.RateConfig
	Location     *time.Location
	Reservations ReservationSource
}

// Result is either Accepted or Rejected.
type Result interface {
	isResult()
}

type Accepted struct {
	Breakdown pricing.Breakdown
}

type Rejected struct {
	Reasons   []string
	Conflicts []ExistingReservation
}

func (Accepted) isResult() {}
func (Rejected) isResult() {}

// Evaluate validates the dates, then checks availability, then prices the
// stay. Each stage runs only if the previous one passed. The availability
// check is advisory; storage must still refuse overlapping writes.
func Evaluate(req Request) (Result, error) {
	if err := req.Policy.Validate(); err != nil {
		return nil, err
	}
	if err := req.Rates.Validate(); err != nil {
		return nil, err
	}

	validation := ValidateDateRange(req.Range, req.Now, req.Policy)
	if !validation.Valid {
		return Rejected{Reasons: validation.Errors}, nil
	}

	if req.Reservations == nil {
		return nil, errors.New("booking: reservation source is required")
	}
	availability := CheckAvailability(req.Range, req.Reservations.Reservations())
	if !availability.Available {
		return Rejected{Reasons: []string{ReasonUnavailable}, Conflicts: availability.Conflicts}, nil
	}

	breakdown, err := pricing.CalculateStay(req.Range, req.Rates, req.Location)
	if err != nil {
		return nil, err
	}
	return Accepted{Breakdown: breakdown}, nil
}

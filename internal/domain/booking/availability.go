package booking

import "staybook/internal/domain/shared/daterange"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusCancelled Status = "CANCELLED"
	StatusRejected  Status = "REJECTED"
)

// Occupies reports whether a reservation in this status holds its dates.
func (s Status) Occupies() bool {
	return s == StatusPending || s == StatusApproved
}

// ActiveStatuses are the statuses that block a property's calendar.
var ActiveStatuses = []Status{StatusPending, StatusApproved}

type ExistingReservation struct {
	ID     BookingID           `json:"id"`
	Range  daterange.DateRange `json:"range"`
	Status Status              `json:"status"`
}

type Availability struct {
	Available bool
	Conflicts []ExistingReservation
}

// CheckAvailability returns every occupying reservation overlapping candidate,
// preserving input order. Adjacent stays never conflict.
func CheckAvailability(candidate daterange.DateRange, reservations []ExistingReservation) Availability {
	var conflicts []ExistingReservation
	for _, r := range reservations {
		if !r.Status.Occupies() {
			continue
		}
		if candidate.Overlaps(r.Range) {
			conflicts = append(conflicts, r)
		}
	}
	return Availability{Available: len(conflicts) == 0, Conflicts: conflicts}
}

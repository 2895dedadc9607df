package booking

import (
	"time"

	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
)

type BookingRequested struct {
	BookingID  BookingID
	PropertyID properties.PropertyID
	GuestID    string
	Range      daterange.DateRange
	Total      int64
	Currency   string
	At         time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingApproved struct {
	BookingID  BookingID
	PropertyID properties.PropertyID
	Range      daterange.DateRange
	At         time.Time
}

func (e BookingApproved) EventName() string     { return "booking.approved" }
func (e BookingApproved) AggregateID() string   { return string(e.BookingID) }
func (e BookingApproved) OccurredAt() time.Time { return e.At }

type BookingRejected struct {
	BookingID BookingID
	Reason    string
	At        time.Time
}

func (e BookingRejected) EventName() string     { return "booking.rejected" }
func (e BookingRejected) AggregateID() string   { return string(e.BookingID) }
func (e BookingRejected) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID
	Reason    string
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

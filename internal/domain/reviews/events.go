package reviews

import (
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/properties"
)

type ReviewSubmitted struct {
	ReviewID   ReviewID
	BookingID  booking.BookingID
	PropertyID properties.PropertyID
	Rating     int
	At         time.Time
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }

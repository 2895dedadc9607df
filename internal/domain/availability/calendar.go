package availability

import (
	"sort"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
)

// Block is a contiguous occupied span. Adjacent or overlapping reservations
// are merged into a single block.
type Block struct {
	Range    daterange.DateRange
	Bookings []booking.BookingID
}

type Calendar struct {
	PropertyID properties.PropertyID
	Window     daterange.DateRange
	Blocks     []Block
}

// Build projects occupying reservations that intersect window onto a calendar.
func Build(propertyID properties.PropertyID, window daterange.DateRange, reservations []booking.ExistingReservation) Calendar {
	active := make([]booking.ExistingReservation, 0, len(reservations))
	for _, r := range reservations {
		if r.Status.Occupies() && r.Range.Overlaps(window) {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Range.CheckIn.Before(active[j].Range.CheckIn)
	})

	cal := Calendar{PropertyID: propertyID, Window: window}
	for _, r := range active {
		if n := len(cal.Blocks); n > 0 {
			last := &cal.Blocks[n-1]
			if merged, ok := last.Range.Merge(r.Range); ok {
				last.Range = merged
				last.Bookings = append(last.Bookings, r.ID)
				continue
			}
		}
		cal.Blocks = append(cal.Blocks, Block{Range: r.Range, Bookings: []booking.BookingID{r.ID}})
	}
	return cal
}

// Free reports whether the window holds no occupied block overlapping r.
func (c Calendar) Free(r daterange.DateRange) bool {
	for _, b := range c.Blocks {
		if b.Range.Overlaps(r) {
			return false
		}
	}
	return true
}

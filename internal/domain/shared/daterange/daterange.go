package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: check-out must be after check-in")
)

const day = 24 * time.Hour

// DateRange is the half-open stay interval [CheckIn, CheckOut).
// A guest checking out on the same instant another checks in does not overlap.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New returns a validated range normalised to UTC.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Duration may be zero or negative for an unvalidated range.
func (dr DateRange) Duration() time.Duration {
	return dr.CheckOut.Sub(dr.CheckIn)
}

// Nights counts started 24h periods: 23h is one night, 25h is two.
// Non-positive durations yield zero.
func (dr DateRange) Nights() int {
	d := dr.Duration()
	if d <= 0 {
		return 0
	}
	n := int(d / day)
	if d%day != 0 {
		n++
	}
	return n
}

// Overlaps uses strict comparisons on both ends, so adjacent ranges are free.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && dr.CheckOut.After(other.CheckIn)
}

func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.CheckOut.Equal(other.CheckIn) || dr.CheckIn.Equal(other.CheckOut)
}

// Merge joins overlapping or adjacent ranges. It reports false otherwise.
func (dr DateRange) Merge(other DateRange) (DateRange, bool) {
	if !dr.Overlaps(other) && !dr.Adjacent(other) {
		return DateRange{}, false
	}
	start := dr.CheckIn
	if other.CheckIn.Before(start) {
		start = other.CheckIn
	}
	end := dr.CheckOut
	if other.CheckOut.After(end) {
		end = other.CheckOut
	}
	return DateRange{CheckIn: start, CheckOut: end}, true
}

// NightDates returns the local calendar date each night falls on in loc.
// Dates advance by calendar day, so a DST shift never repeats or skips one.
// A nil loc means UTC.
func (dr DateRange) NightDates(loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	first := dr.CheckIn.In(loc)
	n := dr.Nights()
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, first.AddDate(0, 0, i))
	}
	return out
}

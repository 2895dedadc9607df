package booking

import (
	"errors"
	"fmt"
	"time"

	"staybook/internal/domain/shared/daterange"
)

var ErrInvalidPolicy = errors.New("booking: invalid stay policy")

// MaxAdvanceDaysLimit keeps the advance window well inside time.Duration range.
const MaxAdvanceDaysLimit = 3650

// StayPolicy holds the time-relative booking rules. Platform defaults come
// from configuration; a property may narrow the stay length.
type StayPolicy struct {
	MinAdvanceHours int
	MaxAdvanceDays  int
	MinStayNights   int
	MaxStayNights   int
}

func (p StayPolicy) Validate() error {
	switch {
	case p.MinAdvanceHours < 0:
		return fmt.Errorf("%w: min advance hours cannot be negative", ErrInvalidPolicy)
	case p.MaxAdvanceDays <= 0:
		return fmt.Errorf("%w: max advance days must be positive", ErrInvalidPolicy)
	case p.MaxAdvanceDays > MaxAdvanceDaysLimit:
		return fmt.Errorf("%w: max advance days cannot exceed %d", ErrInvalidPolicy, MaxAdvanceDaysLimit)
	case p.MinStayNights < 1:
		return fmt.Errorf("%w: min stay must be at least one night", ErrInvalidPolicy)
	case p.MaxStayNights < p.MinStayNights:
		return fmt.Errorf("%w: max stay is below min stay", ErrInvalidPolicy)
	}
	return nil
}

// WithStayLimits narrows the stay length bounds with non-zero values. Overrides
// are clamped into the platform bounds, so a valid policy stays valid.
func (p StayPolicy) WithStayLimits(minNights, maxNights int) StayPolicy {
	lo, hi := p.MinStayNights, p.MaxStayNights
	if minNights > 0 {
		p.MinStayNights = clamp(minNights, lo, hi)
	}
	if maxNights > 0 {
		p.MaxStayNights = clamp(maxNights, p.MinStayNights, hi)
	}
	return p
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

type DateValidation struct {
	Valid  bool
	Errors []string
	Nights int
}

// ValidateDateRange checks dr against the policy relative to now and reports
// every violated rule. Errors always appear in the order: too soon, too far
// out, non-positive duration, below minimum stay, above maximum stay.
func ValidateDateRange(dr daterange.DateRange, now time.Time, policy StayPolicy) DateValidation {
	nights := dr.Nights()
	var errs []string

	earliest := now.Add(time.Duration(policy.MinAdvanceHours) * time.Hour)
	if dr.CheckIn.Before(earliest) {
		errs = append(errs, fmt.Sprintf("Check-in must be at least %d hours from now", policy.MinAdvanceHours))
	}
	latest := now.Add(time.Duration(policy.MaxAdvanceDays) * 24 * time.Hour)
	if dr.CheckIn.After(latest) {
		errs = append(errs, fmt.Sprintf("Check-in cannot be more than %d days in advance", policy.MaxAdvanceDays))
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		errs = append(errs, "Check-out must be after check-in")
	}
	if nights < policy.MinStayNights {
		errs = append(errs, fmt.Sprintf("Minimum stay is %d nights", policy.MinStayNights))
	}
	if nights > policy.MaxStayNights {
		errs = append(errs, fmt.Sprintf("Maximum stay is %d nights", policy.MaxStayNights))
	}

	return DateValidation{Valid: len(errs) == 0, Errors: errs, Nights: nights}
}

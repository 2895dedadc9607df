package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/daterange"
)

var (
	now    = time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)
	policy = StayPolicy{MinAdvanceHours: 24, MaxAdvanceDays: 365, MinStayNights: 2, MaxStayNights: 30}
)

func jan(d, h int) time.Time {
	return time.Date(2025, time.January, d, h, 0, 0, 0, time.UTC)
}

func TestValidateDateRangeSubDayRoundsUp(t *testing.T) {
	relaxed := StayPolicy{MinAdvanceHours: 0, MaxAdvanceDays: 365, MinStayNights: 1, MaxStayNights: 30}

	// Day0 10:00 to Day1 09:00 is 23h and counts as one night.
	v := ValidateDateRange(daterange.DateRange{CheckIn: jan(10, 10), CheckOut: jan(11, 9)}, now, relaxed)
	assert.True(t, v.Valid)
	assert.Equal(t, 1, v.Nights)

	v = ValidateDateRange(daterange.DateRange{CheckIn: jan(10, 10), CheckOut: jan(11, 11)}, now, relaxed)
	assert.Equal(t, 2, v.Nights)
}

func TestValidateDateRangeAccumulatesInOrder(t *testing.T) {
	// Too soon and one night short of the minimum.
	v := ValidateDateRange(daterange.DateRange{CheckIn: jan(1, 20), CheckOut: jan(2, 10)}, now, policy)

	assert.False(t, v.Valid)
	assert.Equal(t, 1, v.Nights)
	assert.Equal(t, []string{
		"Check-in must be at least 24 hours from now",
		"Minimum stay is 2 nights",
	}, v.Errors)
}

func TestValidateDateRangeRules(t *testing.T) {
	tests := []struct {
		name  string
		rng   daterange.DateRange
		want  []string
		valid bool
	}{
		{
			name:  "acceptable stay",
			rng:   daterange.DateRange{CheckIn: jan(10, 14), CheckOut: jan(13, 11)},
			valid: true,
		},
		{
			name: "too far out",
			rng:  daterange.DateRange{CheckIn: now.AddDate(2, 0, 0), CheckOut: now.AddDate(2, 0, 3)},
			want: []string{"Check-in cannot be more than 365 days in advance"},
		},
		{
			name: "exactly at the advance boundary is allowed",
			rng:  daterange.DateRange{CheckIn: now.Add(24 * time.Hour), CheckOut: now.Add(72 * time.Hour)},
			valid: true,
		},
		{
			name: "checkout before checkin",
			rng:  daterange.DateRange{CheckIn: jan(10, 14), CheckOut: jan(9, 14)},
			want: []string{"Check-out must be after check-in", "Minimum stay is 2 nights"},
		},
		{
			name: "too long",
			rng:  daterange.DateRange{CheckIn: jan(10, 14), CheckOut: jan(10, 14).AddDate(0, 0, 31)},
			want: []string{"Maximum stay is 30 nights"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateDateRange(tt.rng, now, policy)
			assert.Equal(t, tt.valid, v.Valid)
			assert.Equal(t, tt.want, v.Errors)
		})
	}
}

func TestStayPolicyValidate(t *testing.T) {
	require.NoError(t, policy.Validate())

	bad := []StayPolicy{
		{MinAdvanceHours: -1, MaxAdvanceDays: 10, MinStayNights: 1, MaxStayNights: 2},
		{MaxAdvanceDays: 0, MinStayNights: 1, MaxStayNights: 2},
		{MaxAdvanceDays: 10, MinStayNights: 0, MaxStayNights: 2},
		{MaxAdvanceDays: 10, MinStayNights: 3, MaxStayNights: 2},
		{MaxAdvanceDays: 200000, MinStayNights: 1, MaxStayNights: 2},
	}
	for _, p := range bad {
		assert.ErrorIs(t, p.Validate(), ErrInvalidPolicy, "%+v", p)
	}
}

func TestWithStayLimits(t *testing.T) {
	p := policy.WithStayLimits(3, 0)
	assert.Equal(t, 3, p.MinStayNights)
	assert.Equal(t, 30, p.MaxStayNights)
	assert.Equal(t, 2, policy.MinStayNights)
}

func TestWithStayLimitsClampsToPlatformBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		wantMin  int
		wantMax  int
	}{
		{"min above platform max", 40, 0, 30, 30},
		{"max above platform max", 3, 60, 3, 30},
		{"min below platform min", 1, 10, 2, 10},
		{"max below own min", 10, 5, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := policy.WithStayLimits(tt.min, tt.max)
			assert.Equal(t, tt.wantMin, p.MinStayNights)
			assert.Equal(t, tt.wantMax, p.MaxStayNights)
			assert.NoError(t, p.Validate())
		})
	}
}

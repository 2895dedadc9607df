package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/daterange"
)

func stay(in, out int) daterange.DateRange {
	return daterange.DateRange{CheckIn: jan(in, 0), CheckOut: jan(out, 0)}
}

func TestCheckAvailabilityHalfOpenBoundaries(t *testing.T) {
	existing := []ExistingReservation{{ID: "b-1", Range: stay(10, 15), Status: StatusApproved}}

	assert.True(t, CheckAvailability(stay(15, 18), existing).Available, "check-in on existing check-out")
	assert.True(t, CheckAvailability(stay(5, 10), existing).Available, "check-out on existing check-in")
}

func TestCheckAvailabilityReportsConflict(t *testing.T) {
	existing := []ExistingReservation{{ID: "b-1", Range: stay(12, 20), Status: StatusPending}}

	got := CheckAvailability(stay(10, 15), existing)
	assert.False(t, got.Available)
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, BookingID("b-1"), got.Conflicts[0].ID)
}

func TestCheckAvailabilityReturnsAllConflictsInOrder(t *testing.T) {
	existing := []ExistingReservation{
		{ID: "b-1", Range: stay(1, 11), Status: StatusApproved},
		{ID: "b-2", Range: stay(11, 13), Status: StatusCancelled},
		{ID: "b-3", Range: stay(12, 14), Status: StatusRejected},
		{ID: "b-4", Range: stay(14, 16), Status: StatusPending},
		{ID: "b-5", Range: stay(20, 22), Status: StatusPending},
	}

	got := CheckAvailability(stay(10, 15), existing)
	assert.False(t, got.Available)
	require.Len(t, got.Conflicts, 2)
	assert.Equal(t, BookingID("b-1"), got.Conflicts[0].ID)
	assert.Equal(t, BookingID("b-4"), got.Conflicts[1].ID)
}

func TestInactiveReservationsNeverBlock(t *testing.T) {
	existing := []ExistingReservation{
		{ID: "b-1", Range: stay(10, 15), Status: StatusCancelled},
		{ID: "b-2", Range: stay(10, 15), Status: StatusRejected},
	}
	got := CheckAvailability(stay(10, 15), existing)
	assert.True(t, got.Available)
	assert.Empty(t, got.Conflicts)
}

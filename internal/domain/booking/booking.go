package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/pricing"
	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
)

var (
	ErrInvalidGuests          = errors.New("booking: guests count must be positive")
	ErrInvalidState           = errors.New("booking: invalid state transition")
	ErrBookingNotFound        = errors.New("booking: not found")
	ErrOverlappingReservation = errors.New("booking: dates overlap an active reservation")
	ErrConcurrentUpdate       = errors.New("booking: concurrent modification")
)

type BookingID string

// Booking is a guest's reservation request for a property.
type Booking struct {
	ID         BookingID
	PropertyID properties.PropertyID
	HostID     properties.HostID
	GuestID    string
	Range      daterange.DateRange
	Guests     int
	Price      pricing.Breakdown
	Status     Status
	Reason     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	// Save persists the booking. Storage must refuse, atomically, an
	// occupying booking whose range overlaps another occupying booking of
	// the same property, returning ErrOverlappingReservation.
	Save(ctx context.Context, booking *Booking) error
	ActiveByProperty(ctx context.Context, propertyID properties.PropertyID) ([]ExistingReservation, error)
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByHost(ctx context.Context, hostID properties.HostID) ([]*Booking, error)
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	PropertyID properties.PropertyID
	HostID     properties.HostID
	GuestID    string
	Range      daterange.DateRange
	Guests     int
	Price      pricing.Breakdown
	CreatedAt  time.Time
}

// NewBooking creates a PENDING booking from an accepted evaluation.
func NewBooking(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if strings.TrimSpace(params.GuestID) == "" {
		return nil, errors.New("booking: guest id required")
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.Price.Nights <= 0 {
		return nil, errors.New("booking: price breakdown required")
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		HostID:     params.HostID,
		GuestID:    params.GuestID,
		Range:      params.Range,
		Guests:     params.Guests,
		Price:      params.Price,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(BookingRequested{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		GuestID:    b.GuestID,
		Range:      b.Range,
		Total:      b.Price.Total.Amount,
		Currency:   b.Price.Total.Currency,
		At:         now,
	})
	return b, nil
}

func (b *Booking) Approve(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusApproved
	b.UpdatedAt = now.UTC()
	b.Record(BookingApproved{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Reject(reason string, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusRejected
	b.Reason = strings.TrimSpace(reason)
	b.UpdatedAt = now.UTC()
	b.Record(BookingRejected{BookingID: b.ID, Reason: b.Reason, At: b.UpdatedAt})
	return nil
}

// Cancel releases the dates. Stays that have already started cannot be cancelled.
func (b *Booking) Cancel(reason string, now time.Time) error {
	if !b.Status.Occupies() {
		return ErrInvalidState
	}
	if b.Status == StatusApproved && !now.Before(b.Range.CheckIn) {
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.Reason = strings.TrimSpace(reason)
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, Reason: b.Reason, At: b.UpdatedAt})
	return nil
}

// Completed reports whether an approved stay has checked out.
func (b *Booking) Completed(now time.Time) bool {
	return b.Status == StatusApproved && !now.Before(b.Range.CheckOut)
}

func (b *Booking) Reservation() ExistingReservation {
	return ExistingReservation{ID: b.ID, Range: b.Range, Status: b.Status}
}

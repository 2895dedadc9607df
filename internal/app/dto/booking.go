package dto

import (
	"time"

	domainbooking "staybook/internal/domain/booking"
)

type Reservation struct {
	ID       string    `json:"id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Status   string    `json:"status"`
}

func MapReservations(in []domainbooking.ExistingReservation) []Reservation {
	out := make([]Reservation, 0, len(in))
	for _, r := range in {
		out = append(out, Reservation{
			ID:       string(r.ID),
			CheckIn:  r.Range.CheckIn,
			CheckOut: r.Range.CheckOut,
			Status:   string(r.Status),
		})
	}
	return out
}

type Booking struct {
	ID         string         `json:"id"`
	PropertyID string         `json:"property_id"`
	GuestID    string         `json:"guest_id"`
	HostID     string         `json:"host_id"`
	CheckIn    time.Time      `json:"check_in"`
	CheckOut   time.Time      `json:"check_out"`
	Guests     int            `json:"guests"`
	Status     string         `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Price      PriceBreakdown `json:"price"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	return Booking{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		GuestID:    b.GuestID,
		HostID:     string(b.HostID),
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		Guests:     b.Guests,
		Status:     string(b.Status),
		Reason:     b.Reason,
		Price:      MapBreakdown(b.Price),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func MapBookings(in []*domainbooking.Booking) BookingCollection {
	items := make([]Booking, 0, len(in))
	for _, b := range in {
		items = append(items, MapBooking(b))
	}
	return BookingCollection{Items: items}
}

package booking

import (
	"context"
	"errors"
	"sort"
	"strings"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainproperties "staybook/internal/domain/properties"
)

const (
	listGuestBookingsKey = "booking.list.guest"
	listHostBookingsKey  = "booking.list.host"
)

type ListGuestBookingsQuery struct {
	GuestID string
	Status  string
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

type ListHostBookingsQuery struct {
	HostID string
	Status string
}

func (q ListHostBookingsQuery) Key() string { return listHostBookingsKey }

type ListBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListBookingsHandler) Guest() queries.Handler[ListGuestBookingsQuery, dto.BookingCollection] {
	return queries.HandlerFunc[ListGuestBookingsQuery, dto.BookingCollection](func(ctx context.Context, q ListGuestBookingsQuery) (dto.BookingCollection, error) {
		guestID := strings.TrimSpace(q.GuestID)
		if guestID == "" {
			return dto.BookingCollection{}, errors.New("guest id is required")
		}
		return h.list(ctx, q.Status, func(ctx context.Context, repo domainbooking.Repository) ([]*domainbooking.Booking, error) {
			return repo.ListByGuest(ctx, guestID)
		})
	})
}

func (h *ListBookingsHandler) Host() queries.Handler[ListHostBookingsQuery, dto.BookingCollection] {
	return queries.HandlerFunc[ListHostBookingsQuery, dto.BookingCollection](func(ctx context.Context, q ListHostBookingsQuery) (dto.BookingCollection, error) {
		hostID := strings.TrimSpace(q.HostID)
		if hostID == "" {
			return dto.BookingCollection{}, errors.New("host id is required")
		}
		return h.list(ctx, q.Status, func(ctx context.Context, repo domainbooking.Repository) ([]*domainbooking.Booking, error) {
			return repo.ListByHost(ctx, domainproperties.HostID(hostID))
		})
	})
}

func (h *ListBookingsHandler) list(ctx context.Context, status string, load func(context.Context, domainbooking.Repository) ([]*domainbooking.Booking, error)) (dto.BookingCollection, error) {
	filter := domainbooking.Status(strings.ToUpper(strings.TrimSpace(status)))
	var out []*domainbooking.Booking
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		items, err := load(ctx, unit.Bookings())
		if err != nil {
			return err
		}
		for _, b := range items {
			if filter != "" && b.Status != filter {
				continue
			}
			out = append(out, b)
		}
		return nil
	})
	if err != nil {
		return dto.BookingCollection{}, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return dto.MapBookings(out), nil
}

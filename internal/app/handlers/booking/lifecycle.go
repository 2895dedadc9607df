package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainproperties "staybook/internal/domain/properties"
)

const (
	approveBookingKey = "booking.approve"
	rejectBookingKey  = "booking.reject"
	cancelBookingKey  = "booking.cancel"
)

type ApproveBookingCommand struct {
	HostID    string
	BookingID string
}

func (c ApproveBookingCommand) Key() string { return approveBookingKey }

type RejectBookingCommand struct {
	HostID    string
	BookingID string
	Reason    string
}

func (c RejectBookingCommand) Key() string { return rejectBookingKey }

type CancelBookingCommand struct {
	GuestID   string
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type BookingActionResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// LifecycleHandler applies host and guest transitions to existing bookings.
type LifecycleHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
	Logger     *slog.Logger
}

func (h *LifecycleHandler) Approve() commands.Handler[ApproveBookingCommand, *BookingActionResult] {
	return commands.HandlerFunc[ApproveBookingCommand, *BookingActionResult](func(ctx context.Context, cmd ApproveBookingCommand) (*BookingActionResult, error) {
		return h.transition(ctx, cmd.BookingID, func(b *domainbooking.Booking, now time.Time) error {
			if b.HostID != domainproperties.HostID(cmd.HostID) {
				return ErrBookingNotOwned
			}
			return b.Approve(now)
		})
	})
}

func (h *LifecycleHandler) Reject() commands.Handler[RejectBookingCommand, *BookingActionResult] {
	return commands.HandlerFunc[RejectBookingCommand, *BookingActionResult](func(ctx context.Context, cmd RejectBookingCommand) (*BookingActionResult, error) {
		return h.transition(ctx, cmd.BookingID, func(b *domainbooking.Booking, now time.Time) error {
			if b.HostID != domainproperties.HostID(cmd.HostID) {
				return ErrBookingNotOwned
			}
			reason := strings.TrimSpace(cmd.Reason)
			if reason == "" {
				reason = "declined by host"
			}
			return b.Reject(reason, now)
		})
	})
}

func (h *LifecycleHandler) Cancel() commands.Handler[CancelBookingCommand, *BookingActionResult] {
	return commands.HandlerFunc[CancelBookingCommand, *BookingActionResult](func(ctx context.Context, cmd CancelBookingCommand) (*BookingActionResult, error) {
		return h.transition(ctx, cmd.BookingID, func(b *domainbooking.Booking, now time.Time) error {
			if b.GuestID != cmd.GuestID {
				return ErrBookingNotOwned
			}
			return b.Cancel(cmd.Reason, now)
		})
	})
}

func (h *LifecycleHandler) transition(ctx context.Context, bookingID string, apply func(*domainbooking.Booking, time.Time) error) (*BookingActionResult, error) {
	id := strings.TrimSpace(bookingID)
	if id == "" {
		return nil, errors.New("booking id is required")
	}
	now := clockOrNow(h.Clock)
	var result *BookingActionResult
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(id))
		if err != nil {
			return err
		}
		if err := apply(booking, now); err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, booking); err != nil {
			return err
		}
		if err := outbox.Collect(ctx, h.Outbox, h.Encoder, booking); err != nil {
			return err
		}
		result = &BookingActionResult{BookingID: string(booking.ID), Status: string(booking.Status)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking transitioned", "booking_id", result.BookingID, "status", result.Status)
	}
	return result, nil
}

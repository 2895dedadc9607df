package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

const expirePendingKey = "booking.expire_pending"

const expiredReason = "expired: host did not respond"

// ExpirePendingCommand cancels PENDING bookings older than TTL, releasing
// their dates.
type ExpirePendingCommand struct {
	TTL time.Duration
}

func (c ExpirePendingCommand) Key() string { return expirePendingKey }

func (c ExpirePendingCommand) Validate() error {
	if c.TTL <= 0 {
		return errors.New("ttl must be positive")
	}
	return nil
}

type ExpirePendingResult struct {
	Expired []string `json:"expired"`
}

type ExpirePendingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
	Logger     *slog.Logger
}

func (h *ExpirePendingHandler) Handle(ctx context.Context, cmd ExpirePendingCommand) (*ExpirePendingResult, error) {
	now := clockOrNow(h.Clock)
	result := &ExpirePendingResult{}
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		stale, err := unit.Bookings().ListPendingCreatedBefore(ctx, now.Add(-cmd.TTL))
		if err != nil {
			return err
		}
		for _, b := range stale {
			if err := b.Cancel(expiredReason, now); err != nil {
				continue
			}
			if err := unit.Bookings().Save(ctx, b); err != nil {
				if errors.Is(err, domainbooking.ErrConcurrentUpdate) {
					continue
				}
				return err
			}
			if err := outbox.Collect(ctx, h.Outbox, h.Encoder, b); err != nil {
				return err
			}
			result.Expired = append(result.Expired, string(b.ID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if h.Logger != nil && len(result.Expired) > 0 {
		h.Logger.Info("pending bookings expired", "count", len(result.Expired))
	}
	return result, nil
}

var _ commands.Handler[ExpirePendingCommand, *ExpirePendingResult] = (*ExpirePendingHandler)(nil)

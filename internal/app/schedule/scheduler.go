package schedule

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	bookingapp "staybook/internal/app/handlers/booking"
)

// Job is one run of a recurring task.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on a cron-style spec such as "@every 5m".
type Scheduler interface {
	Register(name, spec string, job Job) error
}

// ExpiredRecorder observes how many pending bookings a sweep cancelled.
type ExpiredRecorder interface {
	ObserveExpired(n int)
}

// ExpirePending dispatches ExpirePendingCommand through bus so the sweep
// passes the same middleware as user commands.
func ExpirePending(bus commands.Bus, ttl time.Duration, metrics ExpiredRecorder, logger *slog.Logger) Job {
	return func(ctx context.Context) error {
		res, err := commands.Dispatch[bookingapp.ExpirePendingCommand, *bookingapp.ExpirePendingResult](ctx, bus, bookingapp.ExpirePendingCommand{TTL: ttl})
		if err != nil {
			if logger != nil {
				logger.Error("pending expiry failed", "err", err)
			}
			return err
		}
		if res != nil && metrics != nil {
			metrics.ObserveExpired(len(res.Expired))
		}
		return nil
	}
}

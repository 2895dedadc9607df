package middleware

import (
	"context"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
)

// OutboxFlush collects events recorded while a command runs and hands them
// to the outbox only when the command succeeds. Place it outside
// Transaction so events never leave for a rolled-back write.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			ctx = outbox.WithBuffer(ctx)
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}

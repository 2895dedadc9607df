package middleware

import (
	"context"
	"errors"
	"fmt"

	"staybook/internal/app/commands"
	"staybook/internal/app/queries"
)

// ErrInvalidRequest marks messages rejected before reaching a handler.
var ErrInvalidRequest = errors.New("invalid request")

// Validatable messages check their own shape without touching storage.
type Validatable interface {
	Validate() error
}

func Validation() CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := validate(cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func QueryValidation() QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := validate(q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}

func validate(message any) error {
	v, ok := message.(Validatable)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

package middleware

import (
	"context"

	"staybook/internal/app/commands"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
)

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// Transaction runs each command inside a unit of work that is committed only
// when the handler succeeds.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			opts := uow.TxOptions{}
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			var res any
			err := uow.Run(ctx, factory, opts, func(execCtx context.Context, _ uow.UnitOfWork) error {
				var err error
				res, err = next.Dispatch(execCtx, cmd)
				return err
			})
			if err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}

// ReadOnlyQueries gives every query a read-only unit of work.
func ReadOnlyQueries(factory uow.UoWFactory) QueryMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			var res any
			err := uow.Run(ctx, factory, uow.TxOptions{ReadOnly: true}, func(execCtx context.Context, _ uow.UnitOfWork) error {
				var err error
				res, err = next.Ask(execCtx, q)
				return err
			})
			if err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}

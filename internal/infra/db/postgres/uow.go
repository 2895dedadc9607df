package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainproperties "staybook/internal/domain/properties"
	domainreviews "staybook/internal/domain/reviews"
)

var ErrUnitOfWorkNotConfigured = errors.New("postgres: unit of work factory missing pool")

// Factory begins one pgx transaction per unit of work.
type Factory struct {
	Pool *pgxpool.Pool
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Pool == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	if opts.ReadOnly {
		txOpts.AccessMode = pgx.ReadOnly
	}
	tx, err := f.Pool.BeginTx(ctx, txOpts)
	if err != nil {
		return nil, err
	}
	return &Unit{
		tx:         tx,
		properties: &PropertyRepository{db: tx},
		bookings:   &BookingRepository{db: tx},
		reviews:    &ReviewRepository{db: tx},
	}, nil
}

type Unit struct {
	tx         pgx.Tx
	properties *PropertyRepository
	bookings   *BookingRepository
	reviews    *ReviewRepository
}

func (u *Unit) Properties() domainproperties.Repository { return u.properties }

func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }

func (u *Unit) Reviews() domainreviews.Repository { return u.reviews }

func (u *Unit) Commit(ctx context.Context) error {
	return u.tx.Commit(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

var _ uow.UoWFactory = Factory{}

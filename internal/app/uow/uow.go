package uow

import (
	"context"
	"errors"

	domainbooking "staybook/internal/domain/booking"
	domainproperties "staybook/internal/domain/properties"
	domainreviews "staybook/internal/domain/reviews"
)

// UnitOfWork groups repositories behind one transaction boundary.
type UnitOfWork interface {
	Properties() domainproperties.Repository
	Bookings() domainbooking.Repository
	Reviews() domainreviews.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

var ErrUnitOfWorkMissing = errors.New("uow: no unit of work and no factory")

type unitKey struct{}

// Bind returns ctx carrying unit for nested Run calls.
func Bind(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

// Current returns the unit bound to ctx by an enclosing Run.
func Current(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok
}

// Run executes fn inside the unit found in ctx, or inside a new unit begun
// from factory. A unit begun here is committed when fn succeeds and rolled
// back otherwise; an inherited unit is left to its owner.
func Run(ctx context.Context, factory UoWFactory, opts TxOptions, fn func(ctx context.Context, unit UnitOfWork) error) error {
	if unit, ok := Current(ctx); ok {
		return fn(ctx, unit)
	}
	if factory == nil {
		return ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return err
	}
	execCtx := Bind(ctx, unit)
	if err := fn(execCtx, unit); err != nil {
		_ = unit.Rollback(execCtx)
		return err
	}
	if opts.ReadOnly {
		return unit.Rollback(execCtx)
	}
	return unit.Commit(execCtx)
}

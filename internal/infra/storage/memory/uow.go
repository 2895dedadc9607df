package memory

import (
	"context"
	"errors"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainproperties "staybook/internal/domain/properties"
	domainreviews "staybook/internal/domain/reviews"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	PropertiesRepo domainproperties.Repository
	BookingsRepo   domainbooking.Repository
	ReviewsRepo    domainreviews.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// NewFactory builds a factory over fresh empty repositories.
func NewFactory() Factory {
	return Factory{
		PropertiesRepo: NewPropertyRepository(),
		BookingsRepo:   NewBookingRepository(),
		ReviewsRepo:    NewReviewRepository(),
	}
}

// Begin starts a lightweight boundary. Writes are visible immediately; there
// is no isolation or rollback, only the atomic checks each repository makes.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertiesRepo == nil || f.BookingsRepo == nil || f.ReviewsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{properties: f.PropertiesRepo, bookings: f.BookingsRepo, reviews: f.ReviewsRepo}, nil
}

type Unit struct {
	properties domainproperties.Repository
	bookings   domainbooking.Repository
	reviews    domainreviews.Repository
}

func (u *Unit) Properties() domainproperties.Repository { return u.properties }

func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }

func (u *Unit) Reviews() domainreviews.Repository { return u.reviews }

func (u *Unit) Commit(ctx context.Context) error { return nil }

func (u *Unit) Rollback(ctx context.Context) error { return nil }

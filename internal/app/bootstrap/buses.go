// Package bootstrap assembles the command and query buses from storage ports.
package bootstrap

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/booking"
	propertiesapp "staybook/internal/app/handlers/properties"
	reviewsapp "staybook/internal/app/handlers/reviews"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

type Deps struct {
	UoW         uow.UoWFactory
	Events      outbox.Sink
	Idempotency middleware.IdempotencyStore
	Policy      domainbooking.StayPolicy
	Clock       func() time.Time
	Metrics     bookingapp.EvaluationRecorder
	IDGenerator func() string
	Logger      *slog.Logger
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// NewBuses registers every handler and wraps the buses in the middleware
// chain. Commands run as OutboxFlush(Logging(Validation(Idempotency(Transaction(handler))))),
// so events are published only after the transaction commits.
func NewBuses(d Deps) Buses {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.IDGenerator == nil {
		d.IDGenerator = uuid.NewString
	}
	box := outbox.Deferred{Sink: d.Events}
	encoder := outbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.Register[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](commandBus, &bookingapp.RequestBookingHandler{
		UoWFactory: d.UoW,
		Outbox:     box,
		Encoder:    encoder,
		Policy:     d.Policy,
		Clock:      d.Clock,
		Metrics:    d.Metrics,
		Logger:     d.Logger,
	})
	lifecycle := &bookingapp.LifecycleHandler{
		UoWFactory: d.UoW,
		Outbox:     box,
		Encoder:    encoder,
		Clock:      d.Clock,
		Logger:     d.Logger,
	}
	commands.Register(commandBus, lifecycle.Approve())
	commands.Register(commandBus, lifecycle.Reject())
	commands.Register(commandBus, lifecycle.Cancel())
	commands.Register[bookingapp.ExpirePendingCommand, *bookingapp.ExpirePendingResult](commandBus, &bookingapp.ExpirePendingHandler{
		UoWFactory: d.UoW,
		Outbox:     box,
		Encoder:    encoder,
		Clock:      d.Clock,
		Logger:     d.Logger,
	})

	hosts := &propertiesapp.HostCommandsHandler{
		UoWFactory: d.UoW,
		Outbox:     box,
		Encoder:    encoder,
		Clock:      d.Clock,
		Logger:     d.Logger,
	}
	commands.Register(commandBus, hosts.Create())
	commands.Register(commandBus, hosts.UpdateRates())
	commands.Register(commandBus, hosts.Archive())

	commands.Register[reviewsapp.SubmitReviewCommand, dto.Review](commandBus, &reviewsapp.SubmitReviewHandler{
		UoWFactory:  d.UoW,
		Outbox:      box,
		Encoder:     encoder,
		Clock:       d.Clock,
		IDGenerator: d.IDGenerator,
		Logger:      d.Logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.Register[bookingapp.QuoteBookingQuery, dto.Quote](queryBus, &bookingapp.QuoteBookingHandler{
		UoWFactory: d.UoW,
		Policy:     d.Policy,
		Clock:      d.Clock,
		Metrics:    d.Metrics,
		Logger:     d.Logger,
	})
	lists := &bookingapp.ListBookingsHandler{UoWFactory: d.UoW}
	queries.Register(queryBus, lists.Guest())
	queries.Register(queryBus, lists.Host())
	props := &propertiesapp.QueryHandler{UoWFactory: d.UoW}
	queries.Register(queryBus, props.Get())
	queries.Register(queryBus, props.List())
	queries.Register[availabilityapp.GetCalendarQuery, dto.Calendar](queryBus, &availabilityapp.GetCalendarHandler{
		UoWFactory: d.UoW,
		Clock:      d.Clock,
	})
	queries.Register[reviewsapp.ListPropertyReviewsQuery, dto.ReviewCollection](queryBus, &reviewsapp.ListPropertyReviewsHandler{UoWFactory: d.UoW})

	chain := []middleware.CommandMiddleware{
		middleware.OutboxFlush(box),
		middleware.Logging(d.Logger),
		middleware.Validation(),
	}
	if d.Idempotency != nil {
		chain = append(chain, middleware.Idempotency(d.Idempotency, middleware.JSONResultCodec{}, d.Clock))
	}
	chain = append(chain, middleware.Transaction(d.UoW, nil))

	return Buses{
		Commands: middleware.ChainCommands(commandBus, chain...),
		Queries:  middleware.ChainQueries(queryBus, middleware.QueryValidation(), middleware.ReadOnlyQueries(d.UoW)),
	}
}

package availability

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
)

const (
	getCalendarKey = "availability.calendar"
	defaultWindow  = 90 * 24 * time.Hour
	maxWindow      = 366 * 24 * time.Hour
)

var ErrWindowTooLarge = errors.New("availability: calendar window exceeds one year")

type GetCalendarQuery struct {
	PropertyID string
	From       time.Time
	To         time.Time
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
	Clock      func() time.Time
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	window, err := h.window(q)
	if err != nil {
		return dto.Calendar{}, err
	}
	var out dto.Calendar
	err = uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		property, err := unit.Properties().ByID(ctx, domainproperties.PropertyID(strings.TrimSpace(q.PropertyID)))
		if err != nil {
			return err
		}
		reservations, err := unit.Bookings().ActiveByProperty(ctx, property.ID)
		if err != nil {
			return err
		}
		out = dto.MapCalendar(domainavailability.Build(property.ID, window, reservations))
		return nil
	})
	if err != nil {
		return dto.Calendar{}, err
	}
	return out, nil
}

func (h *GetCalendarHandler) window(q GetCalendarQuery) (daterange.DateRange, error) {
	from := q.From
	if from.IsZero() {
		now := time.Now()
		if h.Clock != nil {
			now = h.Clock()
		}
		from = now
	}
	to := q.To
	if to.IsZero() {
		to = from.Add(defaultWindow)
	}
	window, err := daterange.New(from, to)
	if err != nil {
		return daterange.DateRange{}, err
	}
	if window.Duration() > maxWindow {
		return daterange.DateRange{}, ErrWindowTooLarge
	}
	return window, nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)

package properties

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	"staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
)

const (
	createPropertyKey  = "properties.create"
	updateRatesKey     = "properties.update_rates"
	archivePropertyKey = "properties.archive"
)

type CreatePropertyCommand struct {
	PropertyID  string
	HostID      string
	Title       string
	Description string
	Address     domainproperties.Address
	TimeZone    string
	MaxGuests   int
	MinNights   int
	MaxNights   int
	Rates       pricing.RateConfig
}

func (c CreatePropertyCommand) Key() string { return createPropertyKey }

func (c CreatePropertyCommand) Validate() error {
	if strings.TrimSpace(c.HostID) == "" {
		return errors.New("host id is required")
	}
	return nil
}

type UpdateRatesCommand struct {
	HostID     string
	PropertyID string
	Rates      pricing.RateConfig
}

func (c UpdateRatesCommand) Key() string { return updateRatesKey }

type ArchivePropertyCommand struct {
	HostID     string
	PropertyID string
}

func (c ArchivePropertyCommand) Key() string { return archivePropertyKey }

// HostCommandsHandler serves a host's writes to their own properties.
type HostCommandsHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
	Logger     *slog.Logger
}

func (h *HostCommandsHandler) Create() commands.Handler[CreatePropertyCommand, dto.Property] {
	return commands.HandlerFunc[CreatePropertyCommand, dto.Property](func(ctx context.Context, cmd CreatePropertyCommand) (dto.Property, error) {
		var out dto.Property
		err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
			property, err := domainproperties.NewProperty(domainproperties.CreateParams{
				ID:          domainproperties.PropertyID(cmd.PropertyID),
				Host:        domainproperties.HostID(cmd.HostID),
				Title:       cmd.Title,
				Description: cmd.Description,
				Address:     cmd.Address,
				TimeZone:    cmd.TimeZone,
				MaxGuests:   cmd.MaxGuests,
				MinNights:   cmd.MinNights,
				MaxNights:   cmd.MaxNights,
				Rates:       cmd.Rates,
				Now:         h.now(),
			})
			if err != nil {
				return err
			}
			if err := unit.Properties().Save(ctx, property); err != nil {
				return err
			}
			if err := outbox.Collect(ctx, h.Outbox, h.Encoder, property); err != nil {
				return err
			}
			out = dto.MapProperty(property)
			return nil
		})
		if err != nil {
			return dto.Property{}, err
		}
		if h.Logger != nil {
			h.Logger.Info("property created", "property_id", out.ID, "host_id", out.HostID)
		}
		return out, nil
	})
}

func (h *HostCommandsHandler) UpdateRates() commands.Handler[UpdateRatesCommand, dto.Property] {
	return commands.HandlerFunc[UpdateRatesCommand, dto.Property](func(ctx context.Context, cmd UpdateRatesCommand) (dto.Property, error) {
		return h.mutate(ctx, cmd.HostID, cmd.PropertyID, func(p *domainproperties.Property, now time.Time) error {
			return p.UpdateRates(cmd.Rates, now)
		})
	})
}

func (h *HostCommandsHandler) Archive() commands.Handler[ArchivePropertyCommand, dto.Property] {
	return commands.HandlerFunc[ArchivePropertyCommand, dto.Property](func(ctx context.Context, cmd ArchivePropertyCommand) (dto.Property, error) {
		return h.mutate(ctx, cmd.HostID, cmd.PropertyID, func(p *domainproperties.Property, now time.Time) error {
			return p.Archive(now)
		})
	})
}

func (h *HostCommandsHandler) mutate(ctx context.Context, hostID, propertyID string, apply func(*domainproperties.Property, time.Time) error) (dto.Property, error) {
	var out dto.Property
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		property, err := unit.Properties().ByID(ctx, domainproperties.PropertyID(strings.TrimSpace(propertyID)))
		if err != nil {
			return err
		}
		if !property.OwnedBy(domainproperties.HostID(hostID)) {
			return domainproperties.ErrNotOwner
		}
		if err := apply(property, h.now()); err != nil {
			return err
		}
		if err := unit.Properties().Save(ctx, property); err != nil {
			return err
		}
		if err := outbox.Collect(ctx, h.Outbox, h.Encoder, property); err != nil {
			return err
		}
		out = dto.MapProperty(property)
		return nil
	})
	if err != nil {
		return dto.Property{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("property updated", "property_id", out.ID, "state", out.State)
	}
	return out, nil
}

func (h *HostCommandsHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

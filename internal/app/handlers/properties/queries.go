package properties

import (
	"context"
	"strings"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainproperties "staybook/internal/domain/properties"
)

const (
	getPropertyKey    = "properties.get"
	listPropertiesKey = "properties.list"

	defaultListLimit = 20
	maxListLimit     = 100
)

type GetPropertyQuery struct {
	PropertyID string
}

func (q GetPropertyQuery) Key() string { return getPropertyKey }

type ListPropertiesQuery struct {
	HostID string
	Limit  int
	Offset int
}

func (q ListPropertiesQuery) Key() string { return listPropertiesKey }

type QueryHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *QueryHandler) Get() queries.Handler[GetPropertyQuery, dto.Property] {
	return queries.HandlerFunc[GetPropertyQuery, dto.Property](func(ctx context.Context, q GetPropertyQuery) (dto.Property, error) {
		var out dto.Property
		err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
			property, err := unit.Properties().ByID(ctx, domainproperties.PropertyID(strings.TrimSpace(q.PropertyID)))
			if err != nil {
				return err
			}
			out = dto.MapProperty(property)
			return nil
		})
		return out, err
	})
}

func (h *QueryHandler) List() queries.Handler[ListPropertiesQuery, dto.PropertyCollection] {
	return queries.HandlerFunc[ListPropertiesQuery, dto.PropertyCollection](func(ctx context.Context, q ListPropertiesQuery) (dto.PropertyCollection, error) {
		limit := q.Limit
		if limit <= 0 {
			limit = defaultListLimit
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		out := dto.PropertyCollection{Items: []dto.Property{}, Limit: limit, Offset: offset}
		err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
			items, err := unit.Properties().List(ctx, domainproperties.ListParams{
				Host:   domainproperties.HostID(strings.TrimSpace(q.HostID)),
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return err
			}
			for _, p := range items {
				out.Items = append(out.Items, dto.MapProperty(p))
			}
			return nil
		})
		if err != nil {
			return dto.PropertyCollection{}, err
		}
		return out, nil
	})
}

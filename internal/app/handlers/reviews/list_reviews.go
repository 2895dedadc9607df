package reviews

import (
	"context"
	"strings"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainproperties "staybook/internal/domain/properties"
)

const listPropertyReviewsKey = "reviews.list.property"

type ListPropertyReviewsQuery struct {
	PropertyID string
	Limit      int
	Offset     int
}

func (q ListPropertyReviewsQuery) Key() string { return listPropertyReviewsKey }

type ListPropertyReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListPropertyReviewsHandler) Handle(ctx context.Context, q ListPropertyReviewsQuery) (dto.ReviewCollection, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	out := dto.ReviewCollection{Items: []dto.Review{}}
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		property, err := unit.Properties().ByID(ctx, domainproperties.PropertyID(strings.TrimSpace(q.PropertyID)))
		if err != nil {
			return err
		}
		items, err := unit.Reviews().ListByProperty(ctx, property.ID, limit, q.Offset)
		if err != nil {
			return err
		}
		for _, r := range items {
			out.Items = append(out.Items, dto.MapReview(r))
		}
		return nil
	})
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	return out, nil
}

var _ queries.Handler[ListPropertyReviewsQuery, dto.ReviewCollection] = (*ListPropertyReviewsHandler)(nil)

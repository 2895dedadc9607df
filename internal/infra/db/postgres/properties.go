package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainproperties "staybook/internal/domain/properties"
)

type PropertyRepository struct {
	db querier
}

var propertyColumns = []string{
	"id", "host_id", "title", "description", "address_line1", "city", "country", "time_zone",
	"max_guests", "min_nights", "max_nights",
	"currency", "base_rate", "cleaning_fee", "security_deposit",
	"weekend_premium_percent::text", "service_fee_rate::text", "max_service_fee",
	"state", "rating", "review_count", "version", "created_at", "updated_at",
}

func scanProperty(row pgx.Row) (*domainproperties.Property, error) {
	var (
		p                domainproperties.Property
		premium, feeRate string
	)
	err := row.Scan(
		&p.ID, &p.Host, &p.Title, &p.Description, &p.Address.Line1, &p.Address.City, &p.Address.Country, &p.TimeZone,
		&p.MaxGuests, &p.MinNights, &p.MaxNights,
		&p.Rates.Currency, &p.Rates.BaseRate, &p.Rates.CleaningFee, &p.Rates.SecurityDeposit,
		&premium, &feeRate, &p.Rates.MaxServiceFee,
		&p.State, &p.Rating, &p.ReviewCount, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Rates.WeekendPremiumPercent, err = decimal.NewFromString(premium); err != nil {
		return nil, fmt.Errorf("decode weekend premium: %w", err)
	}
	if p.Rates.ServiceFeeRate, err = decimal.NewFromString(feeRate); err != nil {
		return nil, fmt.Errorf("decode service fee rate: %w", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperties.PropertyID) (*domainproperties.Property, error) {
	query, args, err := psql.Select(propertyColumns...).
		From("properties").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get property query failed: %w", err)
	}
	p, err := scanProperty(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainproperties.ErrNotFound
		}
		return nil, fmt.Errorf("get property failed: %w", err)
	}
	return p, nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperties.Property) error {
	values := map[string]any{
		"host_id":                 p.Host,
		"title":                   p.Title,
		"description":             p.Description,
		"address_line1":           p.Address.Line1,
		"city":                    p.Address.City,
		"country":                 p.Address.Country,
		"time_zone":               p.TimeZone,
		"max_guests":              p.MaxGuests,
		"min_nights":              p.MinNights,
		"max_nights":              p.MaxNights,
		"currency":                p.Rates.Currency,
		"base_rate":               p.Rates.BaseRate,
		"cleaning_fee":            p.Rates.CleaningFee,
		"security_deposit":        p.Rates.SecurityDeposit,
		"weekend_premium_percent": squirrel.Expr("?::numeric", p.Rates.WeekendPremiumPercent.String()),
		"service_fee_rate":        squirrel.Expr("?::numeric", p.Rates.ServiceFeeRate.String()),
		"max_service_fee":         p.Rates.MaxServiceFee,
		"state":                   p.State,
		"rating":                  p.Rating,
		"review_count":            p.ReviewCount,
		"version":                 p.Version + 1,
		"updated_at":              p.UpdatedAt,
	}

	if p.Version == 0 {
		values["id"] = p.ID
		values["created_at"] = p.CreatedAt
		query, args, err := psql.Insert("properties").SetMap(values).ToSql()
		if err != nil {
			return fmt.Errorf("build insert property query failed: %w", err)
		}
		if _, err := r.db.Exec(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return domainproperties.ErrConcurrentUpdate
			}
			return fmt.Errorf("insert property failed: %w", err)
		}
		p.Version++
		return nil
	}

	query, args, err := psql.Update("properties").
		SetMap(values).
		Where(squirrel.Eq{"id": p.ID, "version": p.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update property query failed: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update property failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainproperties.ErrConcurrentUpdate
	}
	p.Version++
	return nil
}

func (r *PropertyRepository) List(ctx context.Context, params domainproperties.ListParams) ([]*domainproperties.Property, error) {
	q := psql.Select(propertyColumns...).From("properties")
	if params.Host != "" {
		q = q.Where(squirrel.Eq{"host_id": params.Host})
	} else {
		q = q.Where(squirrel.Eq{"state": domainproperties.StateActive})
	}
	q = q.OrderBy("created_at DESC", "id")
	if params.Limit > 0 {
		q = q.Limit(uint64(params.Limit))
	}
	if params.Offset > 0 {
		q = q.Offset(uint64(params.Offset))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list properties query failed: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list properties failed: %w", err)
	}
	defer rows.Close()

	out := make([]*domainproperties.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan property failed: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ domainproperties.Repository = (*PropertyRepository)(nil)

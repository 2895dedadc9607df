package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	domainbooking "staybook/internal/domain/booking"
	domainproperties "staybook/internal/domain/properties"
	domainreviews "staybook/internal/domain/reviews"
)

type ReviewRepository struct {
	db querier
}

var reviewColumns = []string{"id", "booking_id", "property_id", "author_id", "rating", "text", "created_at"}

func scanReview(row pgx.Row) (*domainreviews.Review, error) {
	var r domainreviews.Review
	if err := row.Scan(&r.ID, &r.BookingID, &r.PropertyID, &r.AuthorID, &r.Rating, &r.Text, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	query, args, err := psql.Select(reviewColumns...).
		From("reviews").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get review query failed: %w", err)
	}
	review, err := scanReview(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, fmt.Errorf("get review failed: %w", err)
	}
	return review, nil
}

func (r *ReviewRepository) ListByProperty(ctx context.Context, propertyID domainproperties.PropertyID, limit, offset int) ([]*domainreviews.Review, error) {
	q := psql.Select(reviewColumns...).
		From("reviews").
		Where(squirrel.Eq{"property_id": propertyID}).
		OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reviews query failed: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews failed: %w", err)
	}
	defer rows.Close()

	out := make([]*domainreviews.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review failed: %w", err)
		}
		out = append(out, review)
	}
	return out, rows.Err()
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	query, args, err := psql.Insert("reviews").
		Columns(reviewColumns...).
		Values(review.ID, review.BookingID, review.PropertyID, review.AuthorID, review.Rating, review.Text, review.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert review query failed: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domainreviews.ErrAlreadyReviewed
		}
		return fmt.Errorf("insert review failed: %w", err)
	}
	return nil
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)

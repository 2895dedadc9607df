package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	domainbooking "staybook/internal/domain/booking"
	domainproperties "staybook/internal/domain/properties"
)

// BookingRepository relies on the bookings_no_overlap exclusion constraint
// to refuse overlapping occupying rows, so racing writers cannot both commit.
type BookingRepository struct {
	db querier
}

var bookingColumns = []string{
	"id", "property_id", "host_id", "guest_id", "check_in", "check_out",
	"guests", "status", "reason", "price", "version", "created_at", "updated_at",
}

func occupyingStatuses() []string {
	out := make([]string, 0, len(domainbooking.ActiveStatuses))
	for _, s := range domainbooking.ActiveStatuses {
		out = append(out, string(s))
	}
	return out
}

func scanBooking(row pgx.Row) (*domainbooking.Booking, error) {
	var (
		b     domainbooking.Booking
		price []byte
	)
	if err := row.Scan(
		&b.ID, &b.PropertyID, &b.HostID, &b.GuestID, &b.Range.CheckIn, &b.Range.CheckOut,
		&b.Guests, &b.Status, &b.Reason, &price, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(price, &b.Price); err != nil {
		return nil, fmt.Errorf("decode price: %w", err)
	}
	b.Range.CheckIn = b.Range.CheckIn.UTC()
	b.Range.CheckOut = b.Range.CheckOut.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	query, args, err := psql.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}
	b, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	price, err := json.Marshal(b.Price)
	if err != nil {
		return fmt.Errorf("encode price: %w", err)
	}
	values := map[string]any{
		"status":     b.Status,
		"reason":     b.Reason,
		"price":      string(price),
		"version":    b.Version + 1,
		"updated_at": b.UpdatedAt,
	}

	var (
		query string
		args  []any
	)
	if b.Version == 0 {
		values["id"] = b.ID
		values["property_id"] = b.PropertyID
		values["host_id"] = b.HostID
		values["guest_id"] = b.GuestID
		values["check_in"] = b.Range.CheckIn
		values["check_out"] = b.Range.CheckOut
		values["guests"] = b.Guests
		values["created_at"] = b.CreatedAt
		query, args, err = psql.Insert("bookings").SetMap(values).ToSql()
	} else {
		query, args, err = psql.Update("bookings").
			SetMap(values).
			Where(squirrel.Eq{"id": b.ID, "version": b.Version}).
			ToSql()
	}
	if err != nil {
		return fmt.Errorf("build save booking query failed: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	switch {
	case isExclusionViolation(err):
		return domainbooking.ErrOverlappingReservation
	case isUniqueViolation(err):
		return domainbooking.ErrConcurrentUpdate
	case err != nil:
		return fmt.Errorf("save booking failed: %w", err)
	case tag.RowsAffected() == 0:
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version++
	return nil
}

func (r *BookingRepository) ActiveByProperty(ctx context.Context, propertyID domainproperties.PropertyID) ([]domainbooking.ExistingReservation, error) {
	query, args, err := psql.Select("id", "check_in", "check_out", "status").
		From("bookings").
		Where(squirrel.Eq{"property_id": propertyID, "status": occupyingStatuses()}).
		OrderBy("check_in", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active bookings query failed: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active bookings failed: %w", err)
	}
	defer rows.Close()

	out := make([]domainbooking.ExistingReservation, 0)
	for rows.Next() {
		var res domainbooking.ExistingReservation
		if err := rows.Scan(&res.ID, &res.Range.CheckIn, &res.Range.CheckOut, &res.Status); err != nil {
			return nil, fmt.Errorf("scan reservation failed: %w", err)
		}
		res.Range.CheckIn = res.Range.CheckIn.UTC()
		res.Range.CheckOut = res.Range.CheckOut.UTC()
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, squirrel.Eq{"guest_id": guestID})
}

func (r *BookingRepository) ListByHost(ctx context.Context, hostID domainproperties.HostID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, squirrel.Eq{"host_id": hostID})
}

func (r *BookingRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*domainbooking.Booking, error) {
	return r.list(ctx, squirrel.And{
		squirrel.Eq{"status": domainbooking.StatusPending},
		squirrel.Lt{"created_at": cutoff},
	})
}

func (r *BookingRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*domainbooking.Booking, error) {
	query, args, err := psql.Select(bookingColumns...).
		From("bookings").
		Where(where).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	out := make([]*domainbooking.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

var _ domainbooking.Repository = (*BookingRepository)(nil)

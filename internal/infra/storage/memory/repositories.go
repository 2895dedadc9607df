package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainbooking "staybook/internal/domain/booking"
	domainproperties "staybook/internal/domain/properties"
	domainreviews "staybook/internal/domain/reviews"
	"staybook/internal/domain/shared/events"
)

// PropertyRepository is an in-memory implementation for tests and local runs.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperties.PropertyID]domainproperties.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperties.PropertyID]domainproperties.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperties.PropertyID) (*domainproperties.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainproperties.ErrNotFound
	}
	return &p, nil
}

// Save stores a copy of property. The stored version must match the
// caller's, and is bumped on success.
func (r *PropertyRepository) Save(ctx context.Context, property *domainproperties.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[property.ID]
	if ok && current.Version != property.Version || !ok && property.Version != 0 {
		return domainproperties.ErrConcurrentUpdate
	}
	property.Version++
	stored := *property
	stored.EventRecorder = events.EventRecorder{}
	r.items[property.ID] = stored
	return nil
}

// List returns properties newest first. Without a host filter only active
// properties are listed.
func (r *PropertyRepository) List(ctx context.Context, params domainproperties.ListParams) ([]*domainproperties.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainproperties.Property, 0, len(r.items))
	for _, p := range r.items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if params.Host != "" && p.Host != params.Host {
			continue
		}
		if params.Host == "" && p.State != domainproperties.StateActive {
			continue
		}
		p := p
		matches = append(matches, &p)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return paginate(matches, params.Limit, params.Offset), nil
}

// BookingRepository keeps bookings in memory. Save holds the write lock
// across the overlap check and the write, so two racing requests for the
// same dates cannot both be stored.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return &b, nil
}

func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[booking.ID]
	if ok && current.Version != booking.Version || !ok && booking.Version != 0 {
		return domainbooking.ErrConcurrentUpdate
	}
	if booking.Status.Occupies() {
		for id, other := range r.items {
			if id == booking.ID || other.PropertyID != booking.PropertyID || !other.Status.Occupies() {
				continue
			}
			if other.Range.Overlaps(booking.Range) {
				return domainbooking.ErrOverlappingReservation
			}
		}
	}
	booking.Version++
	stored := *booking
	stored.EventRecorder = events.EventRecorder{}
	r.items[booking.ID] = stored
	return nil
}

func (r *BookingRepository) ActiveByProperty(ctx context.Context, propertyID domainproperties.PropertyID) ([]domainbooking.ExistingReservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainbooking.ExistingReservation, 0)
	for _, b := range r.items {
		if b.PropertyID == propertyID && b.Status.Occupies() {
			out = append(out, b.Reservation())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Range.CheckIn.Equal(out[j].Range.CheckIn) {
			return out[i].ID < out[j].ID
		}
		return out[i].Range.CheckIn.Before(out[j].Range.CheckIn)
	})
	return out, nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.filter(func(b domainbooking.Booking) bool { return b.GuestID == guestID }), nil
}

func (r *BookingRepository) ListByHost(ctx context.Context, hostID domainproperties.HostID) ([]*domainbooking.Booking, error) {
	return r.filter(func(b domainbooking.Booking) bool { return b.HostID == hostID }), nil
}

func (r *BookingRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*domainbooking.Booking, error) {
	return r.filter(func(b domainbooking.Booking) bool {
		return b.Status == domainbooking.StatusPending && b.CreatedAt.Before(cutoff)
	}), nil
}

func (r *BookingRepository) filter(keep func(domainbooking.Booking) bool) []*domainbooking.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if keep(b) {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ReviewRepository stores at most one review per booking.
type ReviewRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]domainreviews.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[domainbooking.BookingID]domainreviews.Review)}
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.items[bookingID]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return &review, nil
}

func (r *ReviewRepository) ListByProperty(ctx context.Context, propertyID domainproperties.PropertyID, limit, offset int) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if review.PropertyID == propertyID {
			review := review
			out = append(out, &review)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, limit, offset), nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[review.BookingID]; ok && existing.ID != review.ID {
		return domainreviews.ErrAlreadyReviewed
	}
	stored := *review
	stored.EventRecorder = events.EventRecorder{}
	r.items[review.BookingID] = stored
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset > len(items) {
		offset = len(items)
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

var (
	_ domainproperties.Repository = (*PropertyRepository)(nil)
	_ domainbooking.Repository    = (*BookingRepository)(nil)
	_ domainreviews.Repository    = (*ReviewRepository)(nil)
)

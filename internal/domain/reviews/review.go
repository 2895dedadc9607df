package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/events"
)

var (
	ErrInvalidRating   = errors.New("reviews: rating must be between 1 and 5")
	ErrNotFound        = errors.New("reviews: not found")
	ErrNotEligible     = errors.New("reviews: only the guest of a completed stay can review it")
	ErrAlreadyReviewed = errors.New("reviews: booking already reviewed")
)

const maxTextLength = 2000

type ReviewID string

type Review struct {
	ID         ReviewID
	BookingID  booking.BookingID
	PropertyID properties.PropertyID
	AuthorID   string
	Rating     int
	Text       string
	CreatedAt  time.Time
	events.EventRecorder
}

type Repository interface {
	ByBooking(ctx context.Context, bookingID booking.BookingID) (*Review, error)
	ListByProperty(ctx context.Context, propertyID properties.PropertyID, limit, offset int) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
}

type SubmitParams struct {
	ID        ReviewID
	Booking   *booking.Booking
	AuthorID  string
	Rating    int
	Text      string
	CreatedAt time.Time
}

// Submit creates a review for an approved stay that has already ended.
func Submit(params SubmitParams) (*Review, error) {
	b := params.Booking
	if b == nil || b.GuestID != params.AuthorID || !b.Completed(params.CreatedAt) {
		return nil, ErrNotEligible
	}
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	text := strings.TrimSpace(params.Text)
	if len(text) > maxTextLength {
		text = text[:maxTextLength]
	}
	review := &Review{
		ID:         params.ID,
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		AuthorID:   params.AuthorID,
		Rating:     params.Rating,
		Text:       text,
		CreatedAt:  params.CreatedAt.UTC(),
	}
	review.Record(ReviewSubmitted{
		ReviewID:   review.ID,
		BookingID:  review.BookingID,
		PropertyID: review.PropertyID,
		Rating:     review.Rating,
		At:         review.CreatedAt,
	})
	return review, nil
}

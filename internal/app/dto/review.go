package dto

import (
	"time"

	domainreviews "staybook/internal/domain/reviews"
)

type Review struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"booking_id"`
	PropertyID string    `json:"property_id"`
	AuthorID   string    `json:"author_id"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewCollection struct {
	Items []Review `json:"items"`
}

func MapReview(review *domainreviews.Review) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:         string(review.ID),
		BookingID:  string(review.BookingID),
		PropertyID: string(review.PropertyID),
		AuthorID:   review.AuthorID,
		Rating:     review.Rating,
		Text:       review.Text,
		CreatedAt:  review.CreatedAt,
	}
}

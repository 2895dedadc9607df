package reviews

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
)

const submitReviewKey = "reviews.submit"

type SubmitReviewCommand struct {
	BookingID string
	AuthorID  string
	Rating    int
	Text      string
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

func (c SubmitReviewCommand) Validate() error {
	if strings.TrimSpace(c.BookingID) == "" {
		return errors.New("booking id is required")
	}
	if strings.TrimSpace(c.AuthorID) == "" {
		return errors.New("author id is required")
	}
	return nil
}

// SubmitReviewHandler stores a review and folds its rating into the property.
type SubmitReviewHandler struct {
	UoWFactory  uow.UoWFactory
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Clock       func() time.Time
	IDGenerator func() string
	Logger      *slog.Logger
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	now := time.Now().UTC()
	if h.Clock != nil {
		now = h.Clock().UTC()
	}
	newID := h.IDGenerator
	if newID == nil {
		newID = uuid.NewString
	}

	var out dto.Review
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
		if err != nil {
			return err
		}
		existing, err := unit.Reviews().ByBooking(ctx, booking.ID)
		switch {
		case err == nil && existing != nil:
			return domainreviews.ErrAlreadyReviewed
		case err != nil && !errors.Is(err, domainreviews.ErrNotFound):
			return err
		}

		review, err := domainreviews.Submit(domainreviews.SubmitParams{
			ID:        domainreviews.ReviewID(newID()),
			Booking:   booking,
			AuthorID:  cmd.AuthorID,
			Rating:    cmd.Rating,
			Text:      cmd.Text,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		if err := unit.Reviews().Save(ctx, review); err != nil {
			return err
		}

		property, err := unit.Properties().ByID(ctx, booking.PropertyID)
		if err != nil {
			return err
		}
		property.ApplyRating(review.Rating, now)
		if err := unit.Properties().Save(ctx, property); err != nil {
			return err
		}
		if err := outbox.Collect(ctx, h.Outbox, h.Encoder, review); err != nil {
			return err
		}
		out = dto.MapReview(review)
		return nil
	})
	if err != nil {
		return dto.Review{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("review submitted", "booking_id", out.BookingID, "property_id", out.PropertyID, "rating", out.Rating)
	}
	return out, nil
}

var _ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)

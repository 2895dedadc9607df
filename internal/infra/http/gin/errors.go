package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/middleware"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	domainreviews "staybook/internal/domain/reviews"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// respondError renders err and logs it once. Rejections are part of the
// normal flow and carry their reasons in an "errors" list.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var rejection *bookingapp.RejectionError
	if errors.As(err, &rejection) {
		if rejection.Kind == bookingapp.RejectedUnavailable {
			c.JSON(http.StatusConflict, gin.H{
				"errors":    rejection.Reasons,
				"conflicts": dto.MapReservations(rejection.Conflicts),
			})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": rejection.Reasons})
		return
	}

	status := statusFor(err)
	if logger != nil {
		fields := []any{"status", status, "error", err, "path", c.FullPath()}
		if p, ok := currentPrincipal(c); ok {
			fields = append(fields, "user_id", p.ID)
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request refused", fields...)
		}
	}
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainproperties.ErrNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainreviews.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainproperties.ErrNotOwner),
		errors.Is(err, bookingapp.ErrBookingNotOwned),
		errors.Is(err, domainreviews.ErrNotEligible):
		return http.StatusForbidden
	case errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainproperties.ErrInvalidState),
		errors.Is(err, domainbooking.ErrConcurrentUpdate),
		errors.Is(err, domainproperties.ErrConcurrentUpdate),
		errors.Is(err, domainbooking.ErrOverlappingReservation),
		errors.Is(err, domainreviews.ErrAlreadyReviewed),
		errors.Is(err, bookingapp.ErrPropertyUnavailable),
		errors.Is(err, middleware.ErrIdempotencyKeyReuse):
		return http.StatusConflict
	case isValidationError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, middleware.ErrInvalidRequest),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, pricing.ErrInvalidInput),
		errors.Is(err, money.ErrInvalidCurrency),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, bookingapp.ErrTooManyGuests),
		errors.Is(err, availabilityapp.ErrWindowTooLarge),
		errors.Is(err, domainreviews.ErrInvalidRating),
		errors.Is(err, domainproperties.ErrTitleRequired),
		errors.Is(err, domainproperties.ErrHostRequired),
		errors.Is(err, domainproperties.ErrAddressRequired),
		errors.Is(err, domainproperties.ErrGuestsLimit),
		errors.Is(err, domainproperties.ErrNightsRange),
		errors.Is(err, domainproperties.ErrInvalidTimeZone):
		return true
	}
	return false
}

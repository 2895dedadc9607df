package ginserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/queries"
)

// BookingHandler serves the guest side of the booking lifecycle.
type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	NewID    func() string
	Logger   *slog.Logger
}

type stayRequest struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Guests   int       `json:"guests"`
}

type createBookingRequest struct {
	PropertyID string `json:"property_id"`
	stayRequest
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Create(c *gin.Context) {
	guest, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		BookingID:       h.NewID(),
		PropertyID:      strings.TrimSpace(req.PropertyID),
		GuestID:         guest.ID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		IdempotencyKeyV: strings.TrimSpace(c.GetHeader("Idempotency-Key")),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result.Booking)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	guest, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req reasonRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	cmd := bookingapp.CancelBookingCommand{
		GuestID:   guest.ID,
		BookingID: strings.TrimSpace(c.Param("id")),
		Reason:    strings.TrimSpace(req.Reason),
	}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.BookingActionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) ListMine(c *gin.Context) {
	guest, ok := requireRole(c, "")
	if !ok {
		return
	}
	query := bookingapp.ListGuestBookingsQuery{GuestID: guest.ID, Status: c.Query("status")}
	result, err := queries.Ask[bookingapp.ListGuestBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}

package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/queries"
)

// AvailabilityHandler answers read-only questions about a property's dates.
type AvailabilityHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Quote evaluates a stay exactly like a booking request without holding the
// dates. A rejection is a normal 200 answer with accepted=false.
func (h AvailabilityHandler) Quote(c *gin.Context) {
	var req stayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	query := bookingapp.QuoteBookingQuery{
		PropertyID: c.Param("id"),
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Guests:     req.Guests,
	}
	result, err := queries.Ask[bookingapp.QuoteBookingQuery, dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	from, ok := parseOptionalTime(c, "from")
	if !ok {
		return
	}
	to, ok := parseOptionalTime(c, "to")
	if !ok {
		return
	}
	query := availabilityapp.GetCalendarQuery{PropertyID: c.Param("id"), From: from, To: to}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// parseOptionalTime accepts RFC 3339 timestamps or plain dates.
func parseOptionalTime(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " time"})
	return time.Time{}, false
}

var _ AvailabilityHTTP = AvailabilityHandler{}

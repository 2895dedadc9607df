package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/queries"
)

type HostBookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h HostBookingHandler) List(c *gin.Context) {
	host, ok := requireRole(c, roleHost)
	if !ok {
		return
	}
	query := bookingapp.ListHostBookingsQuery{HostID: host.ID, Status: c.Query("status")}
	result, err := queries.Ask[bookingapp.ListHostBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostBookingHandler) Approve(c *gin.Context) {
	host, ok := requireRole(c, roleHost)
	if !ok {
		return
	}
	cmd := bookingapp.ApproveBookingCommand{
		HostID:    host.ID,
		BookingID: strings.TrimSpace(c.Param("id")),
	}
	result, err := commands.Dispatch[bookingapp.ApproveBookingCommand, *bookingapp.BookingActionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostBookingHandler) Reject(c *gin.Context) {
	host, ok := requireRole(c, roleHost)
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
	cmd := bookingapp.RejectBookingCommand{
		HostID:    host.ID,
		BookingID: strings.TrimSpace(c.Param("id")),
		Reason:    strings.TrimSpace(req.Reason),
	}
	result, err := commands.Dispatch[bookingapp.RejectBookingCommand, *bookingapp.BookingActionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostBookingHTTP = HostBookingHandler{}

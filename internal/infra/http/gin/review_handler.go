package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	reviewsapp "staybook/internal/app/handlers/reviews"
	"staybook/internal/app/queries"
)

type ReviewsHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type submitReviewRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

func (h ReviewsHandler) Submit(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := reviewsapp.SubmitReviewCommand{
		BookingID: c.Param("id"),
		AuthorID:  user.ID,
		Rating:    req.Rating,
		Text:      req.Text,
	}
	review, err := commands.Dispatch[reviewsapp.SubmitReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h ReviewsHandler) ListByProperty(c *gin.Context) {
	query := reviewsapp.ListPropertyReviewsQuery{
		PropertyID: c.Param("id"),
		Limit:      parsePositiveInt(c.Query("limit"), 20),
		Offset:     parsePositiveInt(c.Query("offset"), 0),
	}
	result, err := queries.Ask[reviewsapp.ListPropertyReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ReviewsHTTP = ReviewsHandler{}

package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	propertiesapp "staybook/internal/app/handlers/properties"
	"staybook/internal/app/queries"
	"staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
)

type PropertyHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	// Defaults fill the fee settings a host leaves out.
	Defaults pricing.RateConfig
	NewID    func() string
	Logger   *slog.Logger
}

type ratesRequest struct {
	Currency              string           `json:"currency"`
	BaseRate              int64            `json:"base_rate"`
	CleaningFee           int64            `json:"cleaning_fee"`
	SecurityDeposit       int64            `json:"security_deposit"`
	WeekendPremiumPercent decimal.Decimal  `json:"weekend_premium_percent"`
	ServiceFeeRate        *decimal.Decimal `json:"service_fee_rate"`
	MaxServiceFee         *int64           `json:"max_service_fee"`
}

func (r ratesRequest) config(defaults pricing.RateConfig) pricing.RateConfig {
	cfg := pricing.RateConfig{
		Currency:              strings.ToUpper(strings.TrimSpace(r.Currency)),
		BaseRate:              r.BaseRate,
		CleaningFee:           r.CleaningFee,
		SecurityDeposit:       r.SecurityDeposit,
		WeekendPremiumPercent: r.WeekendPremiumPercent,
		ServiceFeeRate:        defaults.ServiceFeeRate,
		MaxServiceFee:         defaults.MaxServiceFee,
	}
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}
	if r.ServiceFeeRate != nil {
		cfg.ServiceFeeRate = *r.ServiceFeeRate
	}
	if r.MaxServiceFee != nil {
		cfg.MaxServiceFee = *r.MaxServiceFee
	}
	return cfg
}

type createPropertyRequest struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Address     domainproperties.Address `json:"address"`
	TimeZone    string                   `json:"time_zone"`
	MaxGuests   int                      `json:"max_guests"`
	MinNights   int                      `json:"min_nights"`
	MaxNights   int                      `json:"max_nights"`
	Rates       ratesRequest             `json:"rates"`
}

func (h PropertyHandler) Create(c *gin.Context) {
	host, ok := requireRole(c, roleHost)
	if !ok {
		return
	}
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := propertiesapp.CreatePropertyCommand{
		PropertyID:  h.NewID(),
		HostID:      host.ID,
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		TimeZone:    req.TimeZone,
		MaxGuests:   req.MaxGuests,
		MinNights:   req.MinNights,
		MaxNights:   req.MaxNights,
		Rates:       req.Rates.config(h.Defaults),
	}
	result, err := commands.Dispatch[propertiesapp.CreatePropertyCommand, dto.Property](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h PropertyHandler) List(c *gin.Context) {
	query := propertiesapp.ListPropertiesQuery{
		HostID: strings.TrimSpace(c.Query("host_id")),
		Limit:  parsePositiveInt(c.Query("limit"), 0),
		Offset: parsePositiveInt(c.Query("offset"), 0),
	}
	result, err := queries.Ask[propertiesapp.ListPropertiesQuery, dto.PropertyCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Get(c *gin.Context) {
	query := propertiesapp.GetPropertyQuery{PropertyID: c.Param("id")}
	result, err := queries.Ask[propertiesapp.GetPropertyQuery, dto.Property](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) UpdateRates(c *gin.Context) {
	host, ok := requireRole(c, roleHost)
	if !ok {
		return
	}
	var req ratesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := propertiesapp.UpdateRatesCommand{
		HostID:     host.ID,
		PropertyID: c.Param("id"),
		Rates:      req.config(h.Defaults),
	}
	result, err := commands.Dispatch[propertiesapp.UpdateRatesCommand, dto.Property](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Archive(c *gin.Context) {
	host, ok := requireRole(c, roleHost)
	if !ok {
		return
	}
	cmd := propertiesapp.ArchivePropertyCommand{HostID: host.ID, PropertyID: c.Param("id")}
	result, err := commands.Dispatch[propertiesapp.ArchivePropertyCommand, dto.Property](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

var _ PropertiesHTTP = PropertyHandler{}

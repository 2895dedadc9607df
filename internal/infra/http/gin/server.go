package ginserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/queries"
	"staybook/internal/domain/pricing"
	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type PropertiesHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	UpdateRates(c *gin.Context)
	Archive(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	Cancel(c *gin.Context)
	ListMine(c *gin.Context)
}

type HostBookingHTTP interface {
	List(c *gin.Context)
	Approve(c *gin.Context)
	Reject(c *gin.Context)
}

type AvailabilityHTTP interface {
	Quote(c *gin.Context)
	Calendar(c *gin.Context)
}

type ReviewsHTTP interface {
	Submit(c *gin.Context)
	ListByProperty(c *gin.Context)
}

type Handlers struct {
	Properties   PropertiesHTTP
	Bookings     BookingHTTP
	HostBookings HostBookingHTTP
	Availability AvailabilityHTTP
	Reviews      ReviewsHTTP
}

// NewHandlers binds every HTTP handler to the same buses.
func NewHandlers(cmds commands.Bus, qs queries.Bus, rateDefaults pricing.RateConfig, logger *slog.Logger) Handlers {
	return Handlers{
		Properties:   PropertyHandler{Commands: cmds, Queries: qs, Defaults: rateDefaults, NewID: uuid.NewString, Logger: logger},
		Bookings:     BookingHandler{Commands: cmds, Queries: qs, NewID: uuid.NewString, Logger: logger},
		HostBookings: HostBookingHandler{Commands: cmds, Queries: qs, Logger: logger},
		Availability: AvailabilityHandler{Queries: qs, Logger: logger},
		Reviews:      ReviewsHandler{Commands: cmds, Queries: qs, Logger: logger},
	}
}

// NewRouter mounts the API under /api/v1 next to the health and metrics
// endpoints.
func NewRouter(cfg config.Config, obsMW obs.Middleware, metrics *obs.Metrics, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	if metrics != nil {
		router.Use(metrics.HTTP())
	}
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	router.Use(GatewayIdentity())

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := router.Group("/api/v1")
	if h.Properties != nil {
		api.POST("/properties", h.Properties.Create)
		api.GET("/properties", h.Properties.List)
		api.GET("/properties/:id", h.Properties.Get)
		api.PUT("/properties/:id/rates", h.Properties.UpdateRates)
		api.DELETE("/properties/:id", h.Properties.Archive)
	}
	if h.Availability != nil {
		api.POST("/properties/:id/quote", h.Availability.Quote)
		api.GET("/properties/:id/calendar", h.Availability.Calendar)
	}
	if h.Bookings != nil {
		api.POST("/bookings", h.Bookings.Create)
		api.POST("/bookings/:id/cancel", h.Bookings.Cancel)
		api.GET("/me/bookings", h.Bookings.ListMine)
	}
	if h.HostBookings != nil {
		api.GET("/host/bookings", h.HostBookings.List)
		api.POST("/bookings/:id/approve", h.HostBookings.Approve)
		api.POST("/bookings/:id/reject", h.HostBookings.Reject)
	}
	if h.Reviews != nil {
		api.POST("/bookings/:id/reviews", h.Reviews.Submit)
		api.GET("/properties/:id/reviews", h.Reviews.ListByProperty)
	}
	return router
}

func NewServer(cfg config.Config, obsMW obs.Middleware, metrics *obs.Metrics, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, metrics, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", headerUserID, headerUserRoles},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}

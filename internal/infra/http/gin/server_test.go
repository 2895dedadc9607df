package ginserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/bootstrap"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/pricing"
	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/storage/memory"
)

var now = time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	events *memory.Outbox
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	events := memory.NewOutbox()
	buses := bootstrap.NewBuses(bootstrap.Deps{
		UoW:         memory.NewFactory(),
		Events:      events,
		Idempotency: memory.NewIdempotencyStore(),
		Policy:      domainbooking.StayPolicy{MinAdvanceHours: 24, MaxAdvanceDays: 365, MinStayNights: 1, MaxStayNights: 30},
		Clock:       func() time.Time { return now },
	})
	defaults := pricing.RateConfig{Currency: "IDR", ServiceFeeRate: decimal.RequireFromString("0.05"), MaxServiceFee: 5000}
	router := NewRouter(
		config.Config{Env: "test"},
		obs.Middleware{},
		obs.NewMetrics(),
		obs.HealthHandlers{},
		NewHandlers(buses.Commands, buses.Queries, defaults, nil),
	)
	return &apiClient{t: t, router: router, events: events}
}

type call struct {
	method  string
	path    string
	user    string
	roles   string
	body    any
	headers map[string]string
}

func (a *apiClient) do(c call) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var body bytes.Buffer
	if c.body != nil {
		require.NoError(a.t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.Header.Set(headerUserID, c.user)
	}
	if c.roles != "" {
		req.Header.Set(headerUserRoles, c.roles)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func (a *apiClient) createProperty() string {
	a.t.Helper()
	w, out := a.do(call{
		method: http.MethodPost, path: "/api/v1/properties", user: "host-1", roles: "host",
		body: map[string]any{
			"title":      "Seminyak villa",
			"address":    map[string]string{"line1": "Jl. Kayu Aya 8", "city": "Seminyak", "country": "ID"},
			"time_zone":  "UTC",
			"max_guests": 4,
			"min_nights": 2,
			"rates":      map[string]any{"base_rate": 100000, "cleaning_fee": 20000},
		},
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	rates := out["rates"].(map[string]any)
	assert.Equal(a.t, "0.05", rates["service_fee_rate"])
	assert.Equal(a.t, "IDR", rates["currency"])
	return out["id"].(string)
}

func stay(propertyID, checkIn, checkOut string) map[string]any {
	return map[string]any{"property_id": propertyID, "check_in": checkIn, "check_out": checkOut, "guests": 2}
}

func TestBookingFlowOverHTTP(t *testing.T) {
	api := newAPI(t)
	propertyID := api.createProperty()

	w, booking := api.do(call{
		method: http.MethodPost, path: "/api/v1/bookings", user: "guest-1",
		body:    stay(propertyID, "2025-01-10T15:00:00Z", "2025-01-13T11:00:00Z"),
		headers: map[string]string{"Idempotency-Key": "req-1"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "PENDING", booking["status"])
	price := booking["price"].(map[string]any)
	assert.Equal(t, float64(325000), price["total"].(map[string]any)["amount"])

	w, replay := api.do(call{
		method: http.MethodPost, path: "/api/v1/bookings", user: "guest-1",
		body:    stay(propertyID, "2025-01-10T15:00:00Z", "2025-01-13T11:00:00Z"),
		headers: map[string]string{"Idempotency-Key": "req-1"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, booking["id"], replay["id"])

	w, conflict := api.do(call{
		method: http.MethodPost, path: "/api/v1/bookings", user: "guest-2",
		body: stay(propertyID, "2025-01-12T15:00:00Z", "2025-01-20T11:00:00Z"),
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.NotEmpty(t, conflict["errors"])
	require.Len(t, conflict["conflicts"], 1)
	assert.Equal(t, booking["id"], conflict["conflicts"].([]any)[0].(map[string]any)["id"])

	w, approved := api.do(call{
		method: http.MethodPost, path: "/api/v1/bookings/" + booking["id"].(string) + "/approve", user: "host-1", roles: "host",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "APPROVED", approved["status"])

	w, mine := api.do(call{method: http.MethodGet, path: "/api/v1/me/bookings", user: "guest-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, mine["items"], 1)

	w, hosted := api.do(call{method: http.MethodGet, path: "/api/v1/host/bookings?status=approved", user: "host-1", roles: "host"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, hosted["items"], 1)

	w, cal := api.do(call{method: http.MethodGet, path: "/api/v1/properties/" + propertyID + "/calendar"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, cal["blocks"], 1)

	assert.Equal(t, []string{"property.created", "booking.requested", "booking.approved"}, api.events.Names())
}

func TestDateRejectionRendersUnprocessable(t *testing.T) {
	api := newAPI(t)
	propertyID := api.createProperty()

	// Three hours ahead and a single night: too soon and below the property's two-night minimum.
	w, out := api.do(call{
		method: http.MethodPost, path: "/api/v1/bookings", user: "guest-1",
		body: stay(propertyID, "2025-01-01T12:00:00Z", "2025-01-02T11:00:00Z"),
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Len(t, out["errors"], 2)
	assert.NotContains(t, out, "conflicts")
}

func TestQuoteDoesNotHoldDates(t *testing.T) {
	api := newAPI(t)
	propertyID := api.createProperty()
	path := "/api/v1/properties/" + propertyID + "/quote"
	body := map[string]any{"check_in": "2025-02-01T15:00:00Z", "check_out": "2025-02-04T11:00:00Z", "guests": 2}

	for i := 0; i < 2; i++ {
		w, quote := api.do(call{method: http.MethodPost, path: path, body: body})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, true, quote["accepted"])
	}

	w, _ := api.do(call{method: http.MethodGet, path: "/api/v1/properties/" + propertyID + "/calendar?from=2025-02-01&to=2025-03-01"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"property.created"}, api.events.Names())
}

func TestIdentityAndOwnership(t *testing.T) {
	api := newAPI(t)

	w, _ := api.do(call{method: http.MethodPost, path: "/api/v1/properties", body: map[string]any{}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(call{method: http.MethodPost, path: "/api/v1/properties", user: "guest-1", body: map[string]any{}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	propertyID := api.createProperty()
	w, _ = api.do(call{
		method: http.MethodPut, path: "/api/v1/properties/" + propertyID + "/rates", user: "host-2", roles: "host",
		body: map[string]any{"base_rate": 1},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, booking := api.do(call{
		method: http.MethodPost, path: "/api/v1/bookings", user: "guest-1",
		body: stay(propertyID, "2025-01-10T15:00:00Z", "2025-01-13T11:00:00Z"),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := booking["id"].(string)

	w, _ = api.do(call{method: http.MethodPost, path: "/api/v1/bookings/" + id + "/approve", user: "host-2", roles: "host"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(call{method: http.MethodPost, path: "/api/v1/bookings/" + id + "/cancel", user: "guest-2"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, cancelled := api.do(call{method: http.MethodPost, path: "/api/v1/bookings/" + id + "/cancel", user: "guest-1", body: map[string]string{"reason": "plans changed"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CANCELLED", cancelled["status"])

	w, _ = api.do(call{method: http.MethodPost, path: "/api/v1/bookings/" + id + "/approve", user: "host-1", roles: "host"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPropertyLifecycleOverHTTP(t *testing.T) {
	api := newAPI(t)
	propertyID := api.createProperty()

	w, updated := api.do(call{
		method: http.MethodPut, path: "/api/v1/properties/" + propertyID + "/rates", user: "host-1", roles: "host",
		body: map[string]any{"base_rate": 150000, "weekend_premium_percent": "20"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(150000), updated["rates"].(map[string]any)["base_rate"])

	w, _ = api.do(call{
		method: http.MethodPut, path: "/api/v1/properties/" + propertyID + "/rates", user: "host-1", roles: "host",
		body: map[string]any{"base_rate": 0},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, list := api.do(call{method: http.MethodGet, path: "/api/v1/properties"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list["items"], 1)

	w, _ = api.do(call{method: http.MethodDelete, path: "/api/v1/properties/" + propertyID, user: "host-1", roles: "host"})
	require.Equal(t, http.StatusOK, w.Code)

	w, list = api.do(call{method: http.MethodGet, path: "/api/v1/properties"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, list["items"])

	w, _ = api.do(call{
		method: http.MethodPost, path: "/api/v1/bookings", user: "guest-1",
		body: stay(propertyID, "2025-01-10T15:00:00Z", "2025-01-13T11:00:00Z"),
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(call{method: http.MethodGet, path: "/api/v1/properties/missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewsOverHTTP(t *testing.T) {
	api := newAPI(t)
	propertyID := api.createProperty()

	w, booking := api.do(call{
		method: http.MethodPost, path: "/api/v1/bookings", user: "guest-1",
		body: stay(propertyID, "2025-01-10T15:00:00Z", "2025-01-13T11:00:00Z"),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// The stay has not happened yet, so the guest cannot review it.
	w, _ = api.do(call{
		method: http.MethodPost, path: "/api/v1/bookings/" + booking["id"].(string) + "/reviews", user: "guest-1",
		body: map[string]any{"rating": 5, "text": "lovely"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, list := api.do(call{method: http.MethodGet, path: "/api/v1/properties/" + propertyID + "/reviews"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, list["items"])
}

func TestOperationalEndpoints(t *testing.T) {
	api := newAPI(t)

	w, _ := api.do(call{method: http.MethodGet, path: "/livez"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(call{method: http.MethodGet, path: "/readyz"})
	assert.Equal(t, http.StatusOK, w.Code)

	api.do(call{method: http.MethodGet, path: "/api/v1/properties"})
	w, _ = api.do(call{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `staybook_http_requests_total{method="GET",route="/api/v1/properties",status="200"} 1`)
}

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	cfg := corsConfig([]string{"https://app.staybook.test"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://app.staybook.test"}, cfg.AllowOrigins)
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)
}

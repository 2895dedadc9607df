package properties

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata"

	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/events"
)

var (
	ErrNotFound         = errors.New("properties: not found")
	ErrTitleRequired    = errors.New("properties: title is required")
	ErrHostRequired     = errors.New("properties: host is required")
	ErrAddressRequired  = errors.New("properties: address line, city and country are required")
	ErrGuestsLimit      = errors.New("properties: max guests must be at least 1")
	ErrNightsRange      = errors.New("properties: min nights must be <= max nights")
	ErrInvalidTimeZone  = errors.New("properties: unknown time zone")
	ErrInvalidState     = errors.New("properties: invalid state transition")
	ErrNotOwner         = errors.New("properties: caller does not own the property")
	ErrConcurrentUpdate = errors.New("properties: concurrent modification")
)

type PropertyID string
type HostID string

type State string

const (
	StateActive   State = "ACTIVE"
	StateArchived State = "ARCHIVED"
)

type Address struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func (a Address) Valid() bool {
	return strings.TrimSpace(a.Line1) != "" && strings.TrimSpace(a.City) != "" && strings.TrimSpace(a.Country) != ""
}

// Property is a bookable unit owned by a host. MinNights and MaxNights of zero
// defer to the platform stay policy.
type Property struct {
	ID          PropertyID
	Host        HostID
	Title       string
	Description string
	Address     Address
	TimeZone    string
	MaxGuests   int
	MinNights   int
	MaxNights   int
	Rates       pricing.RateConfig
	State       State
	Rating      float64
	ReviewCount int
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type ListParams struct {
	Host   HostID
	Limit  int
	Offset int
}

type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	Save(ctx context.Context, property *Property) error
	List(ctx context.Context, params ListParams) ([]*Property, error)
}

type CreateParams struct {
	ID          PropertyID
	Host        HostID
	Title       string
	Description string
	Address     Address
	TimeZone    string
	MaxGuests   int
	MinNights   int
	MaxNights   int
	Rates       pricing.RateConfig
	Now         time.Time
}

func NewProperty(params CreateParams) (*Property, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("properties: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !params.Address.Valid() {
		return nil, ErrAddressRequired
	}
	if params.MaxGuests < 1 {
		return nil, ErrGuestsLimit
	}
	if params.MinNights < 0 || params.MaxNights < 0 || (params.MaxNights > 0 && params.MinNights > params.MaxNights) {
		return nil, ErrNightsRange
	}
	tz := strings.TrimSpace(params.TimeZone)
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimeZone, tz)
	}
	rates, err := pricing.NewRateConfig(params.Rates)
	if err != nil {
		return nil, err
	}

	now := params.Now.UTC()
	p := &Property{
		ID:          params.ID,
		Host:        params.Host,
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Address:     params.Address,
		TimeZone:    tz,
		MaxGuests:   params.MaxGuests,
		MinNights:   params.MinNights,
		MaxNights:   params.MaxNights,
		Rates:       rates,
		State:       StateActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	p.Record(PropertyCreated{PropertyID: p.ID, HostID: p.Host, At: now})
	return p, nil
}

// Location resolves the property's time zone, falling back to UTC.
func (p *Property) Location() *time.Location {
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (p *Property) OwnedBy(host HostID) bool {
	return p.Host == host
}

func (p *Property) Bookable() bool {
	return p.State == StateActive
}

func (p *Property) UpdateRates(rates pricing.RateConfig, now time.Time) error {
	if p.State != StateActive {
		return ErrInvalidState
	}
	normalised, err := pricing.NewRateConfig(rates)
	if err != nil {
		return err
	}
	p.Rates = normalised
	p.UpdatedAt = now.UTC()
	p.Record(RatesUpdated{PropertyID: p.ID, Rates: normalised, At: p.UpdatedAt})
	return nil
}

func (p *Property) Archive(now time.Time) error {
	if p.State == StateArchived {
		return ErrInvalidState
	}
	p.State = StateArchived
	p.UpdatedAt = now.UTC()
	p.Record(PropertyArchived{PropertyID: p.ID, At: p.UpdatedAt})
	return nil
}

// ApplyRating folds a new review rating into the running average.
func (p *Property) ApplyRating(rating int, now time.Time) {
	total := p.Rating*float64(p.ReviewCount) + float64(rating)
	p.ReviewCount++
	p.Rating = math.Round(total/float64(p.ReviewCount)*100) / 100
	p.UpdatedAt = now.UTC()
}

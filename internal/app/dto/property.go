package dto

import (
	"time"

	domainproperties "staybook/internal/domain/properties"
)

type Property struct {
	ID          string                   `json:"id"`
	HostID      string                   `json:"host_id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	Address     domainproperties.Address `json:"address"`
	TimeZone    string                   `json:"time_zone"`
	MaxGuests   int                      `json:"max_guests"`
	MinNights   int                      `json:"min_nights,omitempty"`
	MaxNights   int                      `json:"max_nights,omitempty"`
	Rates       RateConfig               `json:"rates"`
	State       string                   `json:"state"`
	Rating      float64                  `json:"rating"`
	ReviewCount int                      `json:"review_count"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

type PropertyCollection struct {
	Items  []Property `json:"items"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

func MapProperty(p *domainproperties.Property) Property {
	if p == nil {
		return Property{}
	}
	return Property{
		ID:          string(p.ID),
		HostID:      string(p.Host),
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		TimeZone:    p.TimeZone,
		MaxGuests:   p.MaxGuests,
		MinNights:   p.MinNights,
		MaxNights:   p.MaxNights,
		Rates:       MapRates(p.Rates),
		State:       string(p.State),
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

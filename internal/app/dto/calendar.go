package dto

import (
	"time"

	"staybook/internal/domain/availability"
)

type CalendarBlock struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Bookings []string  `json:"bookings"`
}

type Calendar struct {
	PropertyID string          `json:"property_id"`
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Blocks     []CalendarBlock `json:"blocks"`
}

func MapCalendar(cal availability.Calendar) Calendar {
	blocks := make([]CalendarBlock, 0, len(cal.Blocks))
	for _, b := range cal.Blocks {
		ids := make([]string, 0, len(b.Bookings))
		for _, id := range b.Bookings {
			ids = append(ids, string(id))
		}
		blocks = append(blocks, CalendarBlock{From: b.Range.CheckIn, To: b.Range.CheckOut, Bookings: ids})
	}
	return Calendar{
		PropertyID: string(cal.PropertyID),
		From:       cal.Window.CheckIn,
		To:         cal.Window.CheckOut,
		Blocks:     blocks,
	}
}

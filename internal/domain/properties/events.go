package properties

import (
	"time"

	"staybook/internal/domain/pricing"
)

type PropertyCreated struct {
	PropertyID PropertyID
	HostID     HostID
	At         time.Time
}

func (e PropertyCreated) EventName() string     { return "property.created" }
func (e PropertyCreated) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyCreated) OccurredAt() time.Time { return e.At }

type RatesUpdated struct {
	PropertyID PropertyID
	Rates      pricing.RateConfig
	At         time.Time
}

func (e RatesUpdated) EventName() string     { return "property.rates_updated" }
func (e RatesUpdated) AggregateID() string   { return string(e.PropertyID) }
func (e RatesUpdated) OccurredAt() time.Time { return e.At }

type PropertyArchived struct {
	PropertyID PropertyID
	At         time.Time
}

func (e PropertyArchived) EventName() string     { return "property.archived" }
func (e PropertyArchived) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyArchived) OccurredAt() time.Time { return e.At }

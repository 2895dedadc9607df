package properties

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/outbox"
	"staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/infra/storage/memory"
)

var now = time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

func rates(base int64) pricing.RateConfig {
	return pricing.RateConfig{
		Currency:       "idr",
		BaseRate:       base,
		CleaningFee:    20000,
		ServiceFeeRate: decimal.RequireFromString("0.05"),
		MaxServiceFee:  5000,
	}
}

func createCmd(id, host string) CreatePropertyCommand {
	return CreatePropertyCommand{
		PropertyID: id,
		HostID:     host,
		Title:      "Ubud cabin",
		Address:    domainproperties.Address{Line1: "Jl. Raya 2", City: "Ubud", Country: "ID"},
		TimeZone:   "Asia/Makassar",
		MaxGuests:  3,
		Rates:      rates(100000),
	}
}

func setup() (*HostCommandsHandler, *QueryHandler, *memory.Outbox) {
	factory := memory.NewFactory()
	sink := memory.NewOutbox()
	clock := func() time.Time { return now }
	return &HostCommandsHandler{UoWFactory: factory, Outbox: outbox.Deferred{Sink: sink}, Clock: clock},
		&QueryHandler{UoWFactory: factory},
		sink
}

func TestCreateAndGetProperty(t *testing.T) {
	cmds, qs, sink := setup()
	ctx := context.Background()

	created, err := cmds.Create().Handle(ctx, createCmd("p-1", "host-1"))
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", created.State)
	assert.Equal(t, "IDR", created.Rates.Currency)
	assert.Equal(t, []string{"property.created"}, sink.Names())

	got, err := qs.Get().Handle(ctx, GetPropertyQuery{PropertyID: "p-1"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Asia/Makassar", got.TimeZone)

	_, err = qs.Get().Handle(ctx, GetPropertyQuery{PropertyID: "missing"})
	assert.ErrorIs(t, err, domainproperties.ErrNotFound)
}

func TestCreateRejectsInvalidRates(t *testing.T) {
	cmds, _, sink := setup()
	_, err := cmds.Create().Handle(context.Background(), createCmd("p-1", "host-1"))
	require.NoError(t, err)

	bad := createCmd("p-2", "host-1")
	bad.Rates.BaseRate = 0
	_, err = cmds.Create().Handle(context.Background(), bad)
	assert.ErrorIs(t, err, pricing.ErrInvalidInput)
	assert.Len(t, sink.Records(), 1)
}

func TestUpdateRatesRequiresOwner(t *testing.T) {
	cmds, _, sink := setup()
	ctx := context.Background()
	_, err := cmds.Create().Handle(ctx, createCmd("p-1", "host-1"))
	require.NoError(t, err)

	_, err = cmds.UpdateRates().Handle(ctx, UpdateRatesCommand{HostID: "host-2", PropertyID: "p-1", Rates: rates(150000)})
	assert.ErrorIs(t, err, domainproperties.ErrNotOwner)

	updated, err := cmds.UpdateRates().Handle(ctx, UpdateRatesCommand{HostID: "host-1", PropertyID: "p-1", Rates: rates(150000)})
	require.NoError(t, err)
	assert.Equal(t, int64(150000), updated.Rates.BaseRate)
	assert.Equal(t, []string{"property.created", "property.rates_updated"}, sink.Names())
}

func TestArchiveHidesFromPublicList(t *testing.T) {
	cmds, qs, _ := setup()
	ctx := context.Background()
	for _, id := range []string{"p-1", "p-2"} {
		_, err := cmds.Create().Handle(ctx, createCmd(id, "host-1"))
		require.NoError(t, err)
	}
	archived, err := cmds.Archive().Handle(ctx, ArchivePropertyCommand{HostID: "host-1", PropertyID: "p-2"})
	require.NoError(t, err)
	assert.Equal(t, "ARCHIVED", archived.State)

	public, err := qs.List().Handle(ctx, ListPropertiesQuery{})
	require.NoError(t, err)
	require.Len(t, public.Items, 1)
	assert.Equal(t, "p-1", public.Items[0].ID)
	assert.Equal(t, 20, public.Limit)

	mine, err := qs.List().Handle(ctx, ListPropertiesQuery{HostID: "host-1"})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 2)

	_, err = cmds.UpdateRates().Handle(ctx, UpdateRatesCommand{HostID: "host-1", PropertyID: "p-2", Rates: rates(1)})
	assert.ErrorIs(t, err, domainproperties.ErrInvalidState)
}

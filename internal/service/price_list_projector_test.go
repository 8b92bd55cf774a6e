package service

import (
	"context"
	"testing"

	"pharma-market/internal/broker"
	"pharma-market/internal/models"
	"pharma-market/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectorAppliesEachEventOnce(t *testing.T) {
	env := newTestEnv(t)
	catalog := NewCatalogService(env.kv)
	p := NewPriceListProjector(env.kv, catalog)
	ctx := context.Background()

	event := &models.PriceListPublishedEvent{
		BaseEvent:   broker.NewBaseEvent(models.EventTypePriceListPublished),
		WarehouseID: "w2",
		Records:     []models.OfferRecord{{TradeName: "Zyrtec 10mg", Discount: 12}},
	}

	require.NoError(t, p.HandlePriceListPublished(ctx, event))
	require.NoError(t, p.HandlePriceListPublished(ctx, event))

	drugs, err := store.NewCollection[models.Drug](env.kv, store.KeyDrugs).List(ctx)
	require.NoError(t, err)
	count := 0
	for _, d := range drugs {
		if d.TradeName == "Zyrtec 10mg" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestProjectorDropsUnknownWarehouse(t *testing.T) {
	env := newTestEnv(t)
	p := NewPriceListProjector(env.kv, NewCatalogService(env.kv))

	event := &models.PriceListPublishedEvent{
		BaseEvent:   broker.NewBaseEvent(models.EventTypePriceListPublished),
		WarehouseID: "ghost",
		Records:     []models.OfferRecord{{TradeName: "Zyrtec 10mg"}},
	}

	assert.NoError(t, p.HandlePriceListPublished(context.Background(), event))

	drugs, err := store.NewCollection[models.Drug](env.kv, store.KeyDrugs).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, drugs, len(store.SeedDrugs))
}

package service

import (
	"context"
	"testing"
	"time"

	"pharma-market/internal/models"
	"pharma-market/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSearch(t *testing.T) {
	env := newTestEnv(t)
	s := NewCatalogService(env.kv)
	ctx := context.Background()

	results, err := s.Search(ctx, "panadol")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Panadol Advance", results[0].TradeName)
	assert.Equal(t, "Panadol Extra", results[1].TradeName)

	// tie on discount keeps the earliest offer
	require.NotNil(t, results[0].BestOffer)
	assert.Equal(t, "w_raya", results[0].BestOffer.WarehouseID)

	extra := results[1]
	require.NotNil(t, extra.BestOffer)
	assert.Equal(t, "w1", extra.BestOffer.WarehouseID)
	assert.Equal(t, "United Pharma Stores", extra.BestOffer.WarehouseName)
	assert.InDelta(t, 89.64, extra.BestOffer.NetPrice, 0.001)

	best := 0
	for _, o := range extra.Offers {
		if o.IsBest {
			best++
			assert.Equal(t, "w1", o.WarehouseID)
		}
	}
	assert.Equal(t, 1, best)
}

func TestCatalogSearchScientificNameAndEmpty(t *testing.T) {
	env := newTestEnv(t)
	s := NewCatalogService(env.kv)
	ctx := context.Background()

	results, err := s.Search(ctx, "PARACETAMOL")
	require.NoError(t, err)
	assert.Len(t, results, 4)

	results, err = s.Search(ctx, "   ")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestFindOffer(t *testing.T) {
	env := newTestEnv(t)
	s := NewCatalogService(env.kv)
	ctx := context.Background()

	drug, offer, warehouse, err := s.FindOffer(ctx, "d_panadol_extra", "w2")
	require.NoError(t, err)
	assert.Equal(t, "Panadol Extra", drug.TradeName)
	assert.Equal(t, 12.0, offer.Discount)
	assert.Equal(t, "Al Shifa Store", warehouse.Name)

	_, _, _, err = s.FindOffer(ctx, "d_panadol_extra", "w3")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, _, err = s.FindOffer(ctx, "missing", "w1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyPriceList(t *testing.T) {
	env := newTestEnv(t)
	s := NewCatalogService(env.kv)
	s.now = func() time.Time { return time.Date(2024, 10, 11, 16, 5, 0, 0, time.UTC) }
	ctx := context.Background()

	records := []models.OfferRecord{
		{TradeName: "panadol extra", Discount: 25, Price: ptr(110.0), Bonus: ptr("5+1")},
		{TradeName: "Telfast 120mg", Discount: 23},
		{TradeName: "Cataflam 50mg", Discount: 5},
		{TradeName: "  ", Discount: 99},
	}

	applied, err := s.ApplyPriceList(ctx, "w1", records)
	require.NoError(t, err)
	assert.Equal(t, 3, applied)

	drugs, err := store.NewCollection[models.Drug](env.kv, store.KeyDrugs).List(ctx)
	require.NoError(t, err)
	assert.Len(t, drugs, len(store.SeedDrugs)+1)

	byName := map[string]models.Drug{}
	for _, d := range drugs {
		byName[d.TradeName] = d
	}

	extra := byName["Panadol Extra"]
	require.Len(t, extra.Offers, 3)
	assert.Equal(t, models.DrugOffer{WarehouseID: "w1", Price: 110, Discount: 25, Bonus: "5+1", StockStatus: models.StockAvailable, LastUpdated: "16:05"}, extra.Offers[1])

	telfast := byName["Telfast 120mg"]
	require.Len(t, telfast.Offers, 3)
	assert.Equal(t, "w1", telfast.Offers[2].WarehouseID)
	assert.Equal(t, 0.0, telfast.Offers[2].Price)
	assert.Equal(t, "", telfast.Offers[2].Bonus)

	created, ok := byName["Cataflam 50mg"]
	require.True(t, ok)
	assert.NotEmpty(t, created.ID)
	require.Len(t, created.Offers, 1)
	assert.Equal(t, 5.0, created.Offers[0].Discount)

	w, err := s.Warehouse(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "16:05", w.LastUpdated)
}

func TestApplyPriceListUnknownWarehouse(t *testing.T) {
	env := newTestEnv(t)
	s := NewCatalogService(env.kv)

	_, err := s.ApplyPriceList(context.Background(), "nowhere", []models.OfferRecord{{TradeName: "X"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

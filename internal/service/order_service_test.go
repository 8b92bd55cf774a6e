package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pharma-market/internal/models"
	"pharma-market/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pharmacy = &models.User{ID: "user_pharma_1", Name: "Al Hayat Pharmacy", Role: models.RolePharmacy, Status: models.StatusApproved}

func fillCart(t *testing.T, carts *CartService) *CartView {
	t.Helper()
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, pharmacy.ID, AddToCartRequest{DrugID: "d_panadol_extra", WarehouseID: "w1", Quantity: 2})
	require.NoError(t, err)
	_, err = carts.AddToCart(ctx, pharmacy.ID, AddToCartRequest{DrugID: "d_augmentin_1g", WarehouseID: "w_raya", Quantity: 1})
	require.NoError(t, err)
	view, err := carts.AddToCart(ctx, pharmacy.ID, AddToCartRequest{DrugID: "d_panadol_extra", WarehouseID: "w1", Quantity: 3})
	require.NoError(t, err)
	return view
}

func TestCartGroupsAndTotals(t *testing.T) {
	env := newTestEnv(t)
	carts := NewCartService(env.kv, NewCatalogService(env.kv))

	view := fillCart(t, carts)

	require.Len(t, view.Groups, 2)
	assert.Equal(t, "w1", view.Groups[0].WarehouseID)
	assert.Equal(t, "United Pharma Stores", view.Groups[0].Name)
	require.Len(t, view.Groups[0].Items, 1)
	assert.Equal(t, 5, view.Groups[0].Items[0].Quantity)
	assert.InDelta(t, 448.2, view.Groups[0].Total, 0.001)

	assert.Equal(t, "w_raya", view.Groups[1].WarehouseID)
	assert.InDelta(t, 157.5, view.Groups[1].Total, 0.001)

	assert.Equal(t, 6, view.ItemsCount)
	assert.InDelta(t, 605.7, view.Total, 0.001)
}

func TestAddToCartUnknownOffer(t *testing.T) {
	env := newTestEnv(t)
	carts := NewCartService(env.kv, NewCatalogService(env.kv))

	_, err := carts.AddToCart(context.Background(), pharmacy.ID, AddToCartRequest{DrugID: "d_atrovent", WarehouseID: "w3", Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveFromCart(t *testing.T) {
	env := newTestEnv(t)
	carts := NewCartService(env.kv, NewCatalogService(env.kv))
	ctx := context.Background()

	view := fillCart(t, carts)

	unchanged, err := carts.RemoveFromCart(ctx, pharmacy.ID, "missing")
	require.NoError(t, err)
	assert.Equal(t, view, unchanged)

	itemID := view.Groups[1].Items[0].ID
	view, err = carts.RemoveFromCart(ctx, pharmacy.ID, itemID)
	require.NoError(t, err)
	require.Len(t, view.Groups, 1)
	assert.Equal(t, "w1", view.Groups[0].WarehouseID)
}

func TestSubmitOrder(t *testing.T) {
	env := newTestEnv(t)
	carts := NewCartService(env.kv, NewCatalogService(env.kv))
	orders := NewOrderService(env.kv, env.publisher)
	orders.now = func() time.Time { return time.Date(2024, 10, 11, 12, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	fillCart(t, carts)

	order, err := orders.SubmitOrder(ctx, pharmacy, "w1")
	require.NoError(t, err)
	assert.Contains(t, order.ID, "ORD-20241011-")
	assert.Equal(t, "user_pharma_1", order.PharmacyID)
	assert.Equal(t, "Al Hayat Pharmacy", order.PharmacyName)
	assert.Equal(t, "w1", order.WarehouseID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 5, order.ItemsCount)
	assert.InDelta(t, 448.2, order.TotalAmount, 0.001)
	assert.Equal(t, []models.OrderItem{{Name: "Panadol Extra", Qty: 5, Price: 108}}, order.Details)
	assert.Equal(t, "2024-10-11 12:30", order.OrderDate)

	view, err := carts.Cart(ctx, pharmacy.ID)
	require.NoError(t, err)
	require.Len(t, view.Groups, 1)
	assert.Equal(t, "w_raya", view.Groups[0].WarehouseID)

	mine, err := orders.PharmacyOrders(ctx, pharmacy.ID, "")
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, order.ID, mine[0].ID)

	incoming, err := orders.WarehouseOrders(ctx, "w1")
	require.NoError(t, err)
	assert.Len(t, incoming, 3)

	_, err = orders.SubmitOrder(ctx, pharmacy, "w1")
	assert.ErrorIs(t, err, ErrEmptyOrder)

	assert.Equal(t, 1, env.writer.count())
}

func TestSubmitOrderConcurrentSubmits(t *testing.T) {
	env := newTestEnv(t)
	kv := &slowKV{KV: env.kv, prefix: "cart:", delay: 20 * time.Millisecond}
	carts := NewCartService(kv, NewCatalogService(kv))
	orders := NewOrderService(kv, env.publisher)
	ctx := context.Background()

	fillCart(t, carts)
	before, err := orders.WarehouseOrders(ctx, "w1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = orders.SubmitOrder(ctx, pharmacy, "w1")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrEmptyOrder)
	}
	assert.Equal(t, 1, succeeded)

	after, err := orders.WarehouseOrders(ctx, "w1")
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)
	assert.Equal(t, 1, env.writer.count())
}

func TestSubmitOrderConcurrentAddKeepsUnits(t *testing.T) {
	env := newTestEnv(t)
	kv := &slowKV{KV: env.kv, prefix: "cart:", delay: 20 * time.Millisecond}
	carts := NewCartService(kv, NewCatalogService(kv))
	orders := NewOrderService(kv, env.publisher)
	ctx := context.Background()

	fillCart(t, carts)

	var (
		wg     sync.WaitGroup
		order  *models.Order
		subErr error
		addErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		order, subErr = orders.SubmitOrder(ctx, pharmacy, "w1")
	}()
	go func() {
		defer wg.Done()
		_, addErr = carts.AddToCart(ctx, pharmacy.ID, AddToCartRequest{DrugID: "d_panadol_extra", WarehouseID: "w1", Quantity: 4})
	}()
	wg.Wait()
	require.NoError(t, subErr)
	require.NoError(t, addErr)

	view, err := carts.Cart(ctx, pharmacy.ID)
	require.NoError(t, err)
	left := 0
	for _, g := range view.Groups {
		if g.WarehouseID != "w1" {
			continue
		}
		for _, item := range g.Items {
			left += item.Quantity
		}
	}
	assert.Equal(t, 9, order.ItemsCount+left)
}

func TestSubmitOrderRestoresCartWhenOrderWriteFails(t *testing.T) {
	env := newTestEnv(t)
	carts := NewCartService(env.kv, NewCatalogService(env.kv))
	orders := NewOrderService(&failingKV{KV: env.kv, key: store.KeyOrders}, env.publisher)
	ctx := context.Background()

	before := fillCart(t, carts)

	_, err := orders.SubmitOrder(ctx, pharmacy, "w1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errWriteFailed))

	view, err := carts.Cart(ctx, pharmacy.ID)
	require.NoError(t, err)
	assert.Equal(t, before.ItemsCount, view.ItemsCount)
	require.Len(t, view.Groups, 2)
	assert.Equal(t, "w1", view.Groups[0].WarehouseID)
	assert.Equal(t, 0, env.writer.count())
}

func TestPharmacyOrdersFilter(t *testing.T) {
	env := newTestEnv(t)
	orders := NewOrderService(env.kv, env.publisher)
	ctx := context.Background()

	got, err := orders.PharmacyOrders(ctx, pharmacy.ID, "completed")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "INV-2024-004", got[0].ID)

	got, err = orders.PharmacyOrders(ctx, pharmacy.ID, "inv-2024-001")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "INV-2024-001", got[0].ID)

	got, err = orders.PharmacyOrders(ctx, pharmacy.ID, "INV-2024-002")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRequestInvoice(t *testing.T) {
	env := newTestEnv(t)
	orders := NewOrderService(env.kv, env.publisher)
	ctx := context.Background()

	order, err := orders.RequestInvoice(ctx, pharmacy.ID, "INV-2024-004")
	require.NoError(t, err)
	assert.True(t, order.InvoiceRequested)

	again, err := orders.RequestInvoice(ctx, pharmacy.ID, "INV-2024-004")
	require.NoError(t, err)
	assert.True(t, again.InvoiceRequested)
	assert.Equal(t, 1, env.writer.count())

	_, err = orders.RequestInvoice(ctx, pharmacy.ID, "INV-2024-001")
	assert.ErrorIs(t, err, ErrInvoiceNotAllowed)

	_, err = orders.RequestInvoice(ctx, pharmacy.ID, "INV-2024-002")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarketItems(t *testing.T) {
	env := newTestEnv(t)

	items, err := NewMarketService(env.kv).Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "m1", items[0].ID)
	assert.Equal(t, 29, items[0].SavingsPercent)
	assert.Equal(t, 21, items[1].SavingsPercent)
	assert.Equal(t, 23, items[2].SavingsPercent)
}

package pricing

import (
	"fmt"
	"testing"

	"pharma-market/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("c%d", n)
	}
}

func TestAddToCartMergesSamePair(t *testing.T) {
	drug := models.Drug{ID: "d1", TradeName: "Panadol Extra"}
	offer := models.DrugOffer{WarehouseID: "w1", Price: 45, Discount: 17, Bonus: "10+1"}
	newID := sequentialIDs()

	var cart []models.CartItem
	cart = AddToCart(cart, drug, offer, "United Pharma", 2, newID)

	// a later price change must not rewrite the captured line
	changed := offer
	changed.Price = 60
	changed.Discount = 5
	cart = AddToCart(cart, drug, changed, "United Pharma", 3, newID)

	require.Len(t, cart, 1)
	assert.Equal(t, "c1", cart[0].ID)
	assert.Equal(t, 5, cart[0].Quantity)
	assert.Equal(t, 45.0, cart[0].Price)
	assert.Equal(t, 17.0, cart[0].Discount)
	assert.Equal(t, "10+1", cart[0].Bonus)
}

func TestAddToCartSeparateWarehouses(t *testing.T) {
	drug := models.Drug{ID: "d1", TradeName: "Panadol Extra"}
	newID := sequentialIDs()

	var cart []models.CartItem
	cart = AddToCart(cart, drug, models.DrugOffer{WarehouseID: "w1"}, "A", 1, newID)
	cart = AddToCart(cart, drug, models.DrugOffer{WarehouseID: "w2"}, "B", 1, newID)

	require.Len(t, cart, 2)
	assert.Equal(t, "w1", cart[0].WarehouseID)
	assert.Equal(t, "w2", cart[1].WarehouseID)
}

func TestRemoveFromCart(t *testing.T) {
	cart := []models.CartItem{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	assert.Equal(t, []models.CartItem{{ID: "a"}, {ID: "c"}}, RemoveFromCart(cart, "b"))
	assert.Len(t, RemoveFromCart(cart, "missing"), 3)
}

func TestSplitByWarehouse(t *testing.T) {
	cart := []models.CartItem{
		{ID: "a", WarehouseID: "w1"},
		{ID: "b", WarehouseID: "w2"},
		{ID: "c", WarehouseID: "w1"},
	}

	matched, rest := SplitByWarehouse(cart, "w1")
	assert.Equal(t, []models.CartItem{{ID: "a", WarehouseID: "w1"}, {ID: "c", WarehouseID: "w1"}}, matched)
	assert.Equal(t, []models.CartItem{{ID: "b", WarehouseID: "w2"}}, rest)

	matched, rest = SplitByWarehouse(cart, "w9")
	assert.Empty(t, matched)
	assert.Len(t, rest, 3)
}

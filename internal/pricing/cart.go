package pricing

import "pharma-market/internal/models"

// AddToCart merges a line into the cart. A line for the same (drug, warehouse)
// pair has its quantity increased and keeps the originally captured price,
// discount and bonus. Otherwise a new line is appended with newID().
func AddToCart(items []models.CartItem, drug models.Drug, offer models.DrugOffer, warehouseName string, quantity int, newID func() string) []models.CartItem {
	for i, item := range items {
		if item.DrugID == drug.ID && item.WarehouseID == offer.WarehouseID {
			items[i].Quantity += quantity
			return items
		}
	}
	return append(items, models.CartItem{
		ID:            newID(),
		DrugID:        drug.ID,
		TradeName:     drug.TradeName,
		WarehouseID:   offer.WarehouseID,
		WarehouseName: warehouseName,
		Price:         offer.Price,
		Discount:      offer.Discount,
		Quantity:      quantity,
		Bonus:         offer.Bonus,
	})
}

// RemoveFromCart drops the line with the given id; unknown ids are ignored
func RemoveFromCart(items []models.CartItem, itemID string) []models.CartItem {
	kept := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	return kept
}

// SplitByWarehouse separates the lines addressed to warehouseID from the rest
func SplitByWarehouse(items []models.CartItem, warehouseID string) (matched, rest []models.CartItem) {
	for _, item := range items {
		if item.WarehouseID == warehouseID {
			matched = append(matched, item)
		} else {
			rest = append(rest, item)
		}
	}
	return matched, rest
}

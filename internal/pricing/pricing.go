// Package pricing compares warehouse offers and aggregates cart totals.
package pricing

import (
	"strings"

	"pharma-market/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BestOffer returns the offer with the highest discount. Ties keep the
// earliest offer; false is returned for an empty list. Net price is not
// considered.
func BestOffer(offers []models.DrugOffer) (models.DrugOffer, bool) {
	if len(offers) == 0 {
		return models.DrugOffer{}, false
	}
	best := offers[0]
	for _, o := range offers[1:] {
		if o.Discount > best.Discount {
			best = o
		}
	}
	return best, true
}

// Search matches the query case-insensitively against trade or scientific
// names. An empty query matches nothing.
func Search(drugs []models.Drug, query string) []models.Drug {
	q := strings.ToLower(strings.TrimSpace(query))
	results := []models.Drug{}
	if q == "" {
		return results
	}
	for _, d := range drugs {
		if strings.Contains(strings.ToLower(d.TradeName), q) ||
			strings.Contains(strings.ToLower(d.ScientificName), q) {
			results = append(results, d)
		}
	}
	return results
}

// NetPrice is price × (1 − discount/100)
func NetPrice(price, discount float64) float64 {
	return netPrice(price, discount).InexactFloat64()
}

func netPrice(price, discount float64) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discount).Div(hundred))
	return decimal.NewFromFloat(price).Mul(factor)
}

// LineTotal is the net price of a cart line times its quantity
func LineTotal(item models.CartItem) float64 {
	return lineTotal(item).InexactFloat64()
}

func lineTotal(item models.CartItem) decimal.Decimal {
	return netPrice(item.Price, item.Discount).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// GroupTotal sums the net line totals without rounding. Bonuses never affect
// the amount.
func GroupTotal(items []models.CartItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(lineTotal(item))
	}
	return total.InexactFloat64()
}

// WarehouseGroup is the slice of a cart addressed to one warehouse
type WarehouseGroup struct {
	WarehouseID string            `json:"warehouseId"`
	Name        string            `json:"name"`
	Items       []models.CartItem `json:"items"`
	Total       float64           `json:"total"`
}

// GroupByWarehouse groups cart lines by warehouse, keeping the first-seen order
// of warehouses and of the items inside each group
func GroupByWarehouse(items []models.CartItem) []WarehouseGroup {
	groups := []WarehouseGroup{}
	index := make(map[string]int)
	for _, item := range items {
		i, ok := index[item.WarehouseID]
		if !ok {
			i = len(groups)
			index[item.WarehouseID] = i
			groups = append(groups, WarehouseGroup{
				WarehouseID: item.WarehouseID,
				Name:        item.WarehouseName,
			})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	for i := range groups {
		groups[i].Total = GroupTotal(groups[i].Items)
	}
	return groups
}

// SavingsPercent is the rounded discount of a selling price against the original
func SavingsPercent(original, selling float64) int {
	if original == 0 {
		return 0
	}
	o := decimal.NewFromFloat(original)
	pct := o.Sub(decimal.NewFromFloat(selling)).Div(o).Mul(hundred)
	return int(pct.Round(0).IntPart())
}

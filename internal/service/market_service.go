package service

import (
	"context"

	"pharma-market/internal/models"
	"pharma-market/internal/pricing"
	"pharma-market/internal/store"
)

// MarketListing is a surplus item with its derived savings
type MarketListing struct {
	models.MarketItem
	SavingsPercent int `json:"savingsPercent"`
}

// MarketService lists surplus stock posted by pharmacies
type MarketService struct {
	items *store.Collection[models.MarketItem]
}

// NewMarketService creates a new market service
func NewMarketService(kv store.KV) *MarketService {
	return &MarketService{items: store.NewCollection[models.MarketItem](kv, store.KeyMarketItems)}
}

// Items returns every listing
func (s *MarketService) Items(ctx context.Context) ([]MarketListing, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}

	listings := make([]MarketListing, 0, len(items))
	for _, item := range items {
		listings = append(listings, MarketListing{
			MarketItem:     item,
			SavingsPercent: pricing.SavingsPercent(item.OriginalPrice, item.SellingPrice),
		})
	}
	return listings, nil
}

package service

import (
	"context"

	"pharma-market/internal/models"
	"pharma-market/internal/pricing"
	"pharma-market/internal/store"
	"pharma-market/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartService manages pharmacy carts
type CartService struct {
	kv      store.KV
	catalog *CatalogService
	logger  *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(kv store.KV, catalog *CatalogService) *CartService {
	return &CartService{
		kv:      kv,
		catalog: catalog,
		logger:  util.GetLogger(),
	}
}

// AddToCartRequest represents a request to add an offer to the cart
type AddToCartRequest struct {
	DrugID      string `json:"drugId" binding:"required"`
	WarehouseID string `json:"warehouseId" binding:"required"`
	Quantity    int    `json:"quantity"`
}

// CartView is the cart grouped by warehouse
type CartView struct {
	Groups     []pricing.WarehouseGroup `json:"groups"`
	ItemsCount int                      `json:"itemsCount"`
	Total      float64                  `json:"total"`
}

func (s *CartService) cart(pharmacyID string) *store.Collection[models.CartItem] {
	return store.NewCollection[models.CartItem](s.kv, store.CartKey(pharmacyID))
}

// AddToCart adds the warehouse's offer of a drug to the pharmacy's cart
func (s *CartService) AddToCart(ctx context.Context, pharmacyID string, req AddToCartRequest) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddToCart", "drug_id", req.DrugID, "warehouse_id", req.WarehouseID)
	defer span.End()

	drug, offer, warehouse, err := s.catalog.FindOffer(ctx, req.DrugID, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	newID := func() string { return uuid.New().String() }
	err = s.cart(pharmacyID).Mutate(ctx, func(items []models.CartItem) ([]models.CartItem, error) {
		return pricing.AddToCart(items, drug, offer, warehouse.Name, req.Quantity, newID), nil
	})
	if err != nil {
		return nil, err
	}

	util.CartItemsAddedTotal.Inc()
	s.logger.Debug("Cart item added",
		zap.String("pharmacy_id", pharmacyID),
		zap.String("drug_id", drug.ID),
		zap.String("warehouse_id", warehouse.ID),
		zap.Int("quantity", req.Quantity))

	return s.Cart(ctx, pharmacyID)
}

// RemoveFromCart drops a cart line; unknown ids are a no-op
func (s *CartService) RemoveFromCart(ctx context.Context, pharmacyID, itemID string) (*CartView, error) {
	err := s.cart(pharmacyID).Mutate(ctx, func(items []models.CartItem) ([]models.CartItem, error) {
		return pricing.RemoveFromCart(items, itemID), nil
	})
	if err != nil {
		return nil, err
	}
	return s.Cart(ctx, pharmacyID)
}

// Cart returns the pharmacy's cart grouped by warehouse
func (s *CartService) Cart(ctx context.Context, pharmacyID string) (*CartView, error) {
	items, err := s.cart(pharmacyID).List(ctx)
	if err != nil {
		return nil, err
	}

	view := &CartView{Groups: pricing.GroupByWarehouse(items)}
	for _, item := range items {
		view.ItemsCount += item.Quantity
	}
	view.Total = pricing.GroupTotal(items)
	return view, nil
}

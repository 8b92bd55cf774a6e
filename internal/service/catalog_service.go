package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pharma-market/internal/models"
	"pharma-market/internal/pricing"
	"pharma-market/internal/store"
	"pharma-market/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService serves drug search and applies published price lists
type CatalogService struct {
	drugs      *store.Collection[models.Drug]
	warehouses *store.Collection[models.Warehouse]
	now        func() time.Time
	logger     *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(kv store.KV) *CatalogService {
	return &CatalogService{
		drugs:      store.NewCollection[models.Drug](kv, store.KeyDrugs),
		warehouses: store.NewCollection[models.Warehouse](kv, store.KeyWarehouses),
		now:        time.Now,
		logger:     util.GetLogger(),
	}
}

// OfferView is an offer joined with its warehouse
type OfferView struct {
	models.DrugOffer
	WarehouseName   string  `json:"warehouseName"`
	WarehouseRating float64 `json:"warehouseRating"`
	IntegrationType string  `json:"integrationType"`
	NetPrice        float64 `json:"netPrice"`
	IsBest          bool    `json:"isBest"`
}

// SearchResult is a matched drug with its offers and highlighted best offer
type SearchResult struct {
	ID             string      `json:"id"`
	TradeName      string      `json:"tradeName"`
	ScientificName string      `json:"scientificName"`
	Manufacturer   string      `json:"manufacturer"`
	Type           string      `json:"type"`
	BestOffer      *OfferView  `json:"bestOffer"`
	Offers         []OfferView `json:"offers"`
}

// Search returns the drugs whose trade or scientific name contains the query
func (s *CatalogService) Search(ctx context.Context, query string) ([]SearchResult, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Search")
	defer span.End()

	drugs, err := s.drugs.List(ctx)
	if err != nil {
		return nil, err
	}
	matches := pricing.Search(drugs, query)
	if len(matches) == 0 {
		return []SearchResult{}, nil
	}

	byID, err := s.warehouseIndex(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(matches))
	for _, d := range matches {
		results = append(results, buildResult(d, byID))
	}
	return results, nil
}

func buildResult(d models.Drug, warehouses map[string]models.Warehouse) SearchResult {
	result := SearchResult{
		ID:             d.ID,
		TradeName:      d.TradeName,
		ScientificName: d.ScientificName,
		Manufacturer:   d.Manufacturer,
		Type:           d.Type,
		Offers:         make([]OfferView, 0, len(d.Offers)),
	}

	best, ok := pricing.BestOffer(d.Offers)
	bestIdx := -1
	for i, o := range d.Offers {
		if ok && bestIdx < 0 && o == best {
			bestIdx = i
		}
		w := warehouses[o.WarehouseID]
		result.Offers = append(result.Offers, OfferView{
			DrugOffer:       o,
			WarehouseName:   w.Name,
			WarehouseRating: w.Rating,
			IntegrationType: w.IntegrationType,
			NetPrice:        pricing.NetPrice(o.Price, o.Discount),
			IsBest:          i == bestIdx,
		})
	}
	if bestIdx >= 0 {
		view := result.Offers[bestIdx]
		result.BestOffer = &view
	}
	return result
}

// Warehouses returns all warehouses
func (s *CatalogService) Warehouses(ctx context.Context) ([]models.Warehouse, error) {
	return s.warehouses.List(ctx)
}

// Warehouse returns a single warehouse
func (s *CatalogService) Warehouse(ctx context.Context, warehouseID string) (*models.Warehouse, error) {
	byID, err := s.warehouseIndex(ctx)
	if err != nil {
		return nil, err
	}
	w, ok := byID[warehouseID]
	if !ok {
		return nil, fmt.Errorf("warehouse %s: %w", warehouseID, ErrNotFound)
	}
	return &w, nil
}

// FindOffer resolves a drug, one of its offers and the offering warehouse
func (s *CatalogService) FindOffer(ctx context.Context, drugID, warehouseID string) (models.Drug, models.DrugOffer, models.Warehouse, error) {
	drugs, err := s.drugs.List(ctx)
	if err != nil {
		return models.Drug{}, models.DrugOffer{}, models.Warehouse{}, err
	}

	for _, d := range drugs {
		if d.ID != drugID {
			continue
		}
		for _, o := range d.Offers {
			if o.WarehouseID != warehouseID {
				continue
			}
			w, err := s.Warehouse(ctx, warehouseID)
			if err != nil {
				return models.Drug{}, models.DrugOffer{}, models.Warehouse{}, err
			}
			return d, o, *w, nil
		}
	}
	return models.Drug{}, models.DrugOffer{}, models.Warehouse{}, fmt.Errorf("offer %s/%s: %w", drugID, warehouseID, ErrNotFound)
}

// ApplyPriceList merges records into the catalog as offers of the warehouse.
// Records match drugs by trade name, case-insensitively. A matched drug has the
// warehouse's offer replaced or appended; an unmatched record becomes a new
// drug. Returns the number of records applied.
func (s *CatalogService) ApplyPriceList(ctx context.Context, warehouseID string, records []models.OfferRecord) (int, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ApplyPriceList", "warehouse_id", warehouseID)
	defer span.End()

	if _, err := s.Warehouse(ctx, warehouseID); err != nil {
		return 0, err
	}

	stamp := s.now().Format("15:04")
	applied := 0
	err := s.drugs.Mutate(ctx, func(drugs []models.Drug) ([]models.Drug, error) {
		applied = 0
		for _, r := range records {
			name := strings.TrimSpace(r.TradeName)
			if name == "" {
				continue
			}
			offer := offerFromRecord(warehouseID, r, stamp)

			idx := -1
			for i := range drugs {
				if strings.EqualFold(drugs[i].TradeName, name) {
					idx = i
					break
				}
			}
			if idx < 0 {
				drugs = append(drugs, models.Drug{
					ID:        "d_" + uuid.New().String()[:8],
					TradeName: name,
					Offers:    []models.DrugOffer{offer},
				})
			} else {
				drugs[idx].Offers = upsertOffer(drugs[idx].Offers, offer)
			}
			applied++
		}
		return drugs, nil
	})
	if err != nil {
		return 0, err
	}

	err = s.warehouses.Mutate(ctx, func(warehouses []models.Warehouse) ([]models.Warehouse, error) {
		for i := range warehouses {
			if warehouses[i].ID == warehouseID {
				warehouses[i].LastUpdated = stamp
			}
		}
		return warehouses, nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Price list applied",
		zap.String("warehouse_id", warehouseID),
		zap.Int("records", applied))
	return applied, nil
}

func offerFromRecord(warehouseID string, r models.OfferRecord, stamp string) models.DrugOffer {
	offer := models.DrugOffer{
		WarehouseID: warehouseID,
		Discount:    r.Discount,
		StockStatus: models.StockAvailable,
		LastUpdated: stamp,
	}
	if r.Price != nil {
		offer.Price = *r.Price
	}
	if r.Bonus != nil {
		offer.Bonus = *r.Bonus
	}
	return offer
}

func upsertOffer(offers []models.DrugOffer, offer models.DrugOffer) []models.DrugOffer {
	for i := range offers {
		if offers[i].WarehouseID == offer.WarehouseID {
			offers[i] = offer
			return offers
		}
	}
	return append(offers, offer)
}

func (s *CatalogService) warehouseIndex(ctx context.Context) (map[string]models.Warehouse, error) {
	warehouses, err := s.warehouses.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Warehouse, len(warehouses))
	for _, w := range warehouses {
		byID[w.ID] = w
	}
	return byID, nil
}

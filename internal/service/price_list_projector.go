package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharma-market/internal/models"
	"pharma-market/internal/store"
	"pharma-market/internal/util"

	"go.uber.org/zap"
)

// processedEvent is the marker stored for each consumed event
type processedEvent struct {
	EventType   string    `json:"eventType"`
	ProcessedAt time.Time `json:"processedAt"`
}

// PriceListProjector applies published price lists to the catalog exactly once
// per event
type PriceListProjector struct {
	kv      store.KV
	catalog *CatalogService
	logger  *zap.Logger
}

// NewPriceListProjector creates a new price list projector
func NewPriceListProjector(kv store.KV, catalog *CatalogService) *PriceListProjector {
	return &PriceListProjector{
		kv:      kv,
		catalog: catalog,
		logger:  util.GetLogger(),
	}
}

// HandlePriceListPublished handles a PRICE_LIST_PUBLISHED event
func (p *PriceListProjector) HandlePriceListPublished(ctx context.Context, event *models.PriceListPublishedEvent) error {
	ctx, span := util.StartSpan(ctx, "PriceListProjector.HandlePriceListPublished", "warehouse_id", event.WarehouseID)
	defer span.End()

	marker := store.NewDocument[processedEvent](p.kv, store.ProcessedEventKey(event.EventID))
	_, processed, err := marker.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		p.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	applied, err := p.catalog.ApplyPriceList(ctx, event.WarehouseID, event.Records)
	switch {
	case errors.Is(err, ErrNotFound):
		// retrying cannot succeed for a warehouse that does not exist
		p.logger.Warn("Price list for unknown warehouse dropped",
			zap.String("event_id", event.EventID),
			zap.String("warehouse_id", event.WarehouseID))
	case err != nil:
		return fmt.Errorf("failed to apply price list: %w", err)
	default:
		p.logger.Info("Price list projected",
			zap.String("event_id", event.EventID),
			zap.String("warehouse_id", event.WarehouseID),
			zap.Int("records", applied))
	}

	if err := marker.Set(ctx, processedEvent{EventType: event.EventType, ProcessedAt: time.Now()}); err != nil {
		p.logger.Error("Failed to mark event processed", zap.Error(err))
	}
	return nil
}

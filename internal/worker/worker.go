package worker

import (
	"context"
	"log"

	"pharma-market/internal/broker"
	"pharma-market/internal/service"
)

// PriceListWorker consumes marketplace events and projects published price
// lists into the catalog
type PriceListWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewPriceListWorker creates a new price list worker
func NewPriceListWorker(consumer *broker.Consumer, projector *service.PriceListProjector) *PriceListWorker {
	return &PriceListWorker{
		consumer:     consumer,
		eventHandler: NewEventHandler(projector),
	}
}

// NewEventHandler wires the projector into an event router. It is shared by
// the Kafka worker and the in-process writer used when Kafka is disabled.
func NewEventHandler(projector *service.PriceListProjector) *broker.EventHandler {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnPriceListPublished(projector.HandlePriceListPublished)
	return eventHandler
}

// Start blocks consuming events until ctx is cancelled
func (w *PriceListWorker) Start(ctx context.Context) error {
	log.Println("Starting price list worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *PriceListWorker) Stop() error {
	log.Println("Stopping price list worker...")
	return w.consumer.Close()
}

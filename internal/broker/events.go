package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pharma-market/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// NewBaseEvent stamps a fresh event id and time
func NewBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// EventPublisher handles publishing domain events
type EventPublisher struct {
	writer EventWriter
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(writer EventWriter) *EventPublisher {
	return &EventPublisher{writer: writer}
}

// PublishRegistrationSubmitted publishes RegistrationSubmitted event
func (ep *EventPublisher) PublishRegistrationSubmitted(ctx context.Context, event *models.RegistrationSubmittedEvent) error {
	return ep.writer.PublishEvent(ctx, "registration-"+event.RequestID, event)
}

// PublishRegistrationDecided publishes RegistrationDecided event
func (ep *EventPublisher) PublishRegistrationDecided(ctx context.Context, event *models.RegistrationDecidedEvent) error {
	return ep.writer.PublishEvent(ctx, "registration-"+event.RequestID, event)
}

// PublishUserDeleted publishes UserDeleted event
func (ep *EventPublisher) PublishUserDeleted(ctx context.Context, event *models.UserDeletedEvent) error {
	return ep.writer.PublishEvent(ctx, "user-"+event.UserID, event)
}

// PublishPriceListIngested publishes PriceListIngested event
func (ep *EventPublisher) PublishPriceListIngested(ctx context.Context, event *models.PriceListIngestedEvent) error {
	return ep.writer.PublishEvent(ctx, "warehouse-"+event.WarehouseID, event)
}

// PublishPriceListPublished publishes PriceListPublished event
func (ep *EventPublisher) PublishPriceListPublished(ctx context.Context, event *models.PriceListPublishedEvent) error {
	return ep.writer.PublishEvent(ctx, "warehouse-"+event.WarehouseID, event)
}

// PublishOrderSubmitted publishes OrderSubmitted event
func (ep *EventPublisher) PublishOrderSubmitted(ctx context.Context, event *models.OrderSubmittedEvent) error {
	return ep.writer.PublishEvent(ctx, "order-"+event.OrderID, event)
}

// PublishInvoiceRequested publishes InvoiceRequested event
func (ep *EventPublisher) PublishInvoiceRequested(ctx context.Context, event *models.InvoiceRequestedEvent) error {
	return ep.writer.PublishEvent(ctx, "order-"+event.OrderID, event)
}

// EventHandler routes incoming events
type EventHandler struct {
	onPriceListPublished func(context.Context, *models.PriceListPublishedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnPriceListPublished registers a handler for PriceListPublished events
func (eh *EventHandler) OnPriceListPublished(handler func(context.Context, *models.PriceListPublishedEvent) error) {
	eh.onPriceListPublished = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypePriceListPublished:
		if eh.onPriceListPublished != nil {
			var event models.PriceListPublishedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PriceListPublished event: %w", err)
			}
			return eh.onPriceListPublished(ctx, &event)
		}

	default:
		log.Printf("Skipping event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)
	}

	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pharma-market/internal/broker"
	"pharma-market/internal/models"
	"pharma-market/internal/pricing"
	"pharma-market/internal/store"
	"pharma-market/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService turns cart groups into orders and tracks invoices
type OrderService struct {
	kv             store.KV
	orders         *store.Collection[models.Order]
	eventPublisher *broker.EventPublisher
	now            func() time.Time
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(kv store.KV, eventPublisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		kv:             kv,
		orders:         store.NewCollection[models.Order](kv, store.KeyOrders),
		eventPublisher: eventPublisher,
		now:            time.Now,
		logger:         util.GetLogger(),
	}
}

// SubmitOrder sends the cart lines addressed to one warehouse as a PENDING
// order and removes them from the cart
func (s *OrderService) SubmitOrder(ctx context.Context, pharmacy *models.User, warehouseID string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.SubmitOrder", "warehouse_id", warehouseID)
	defer span.End()

	cart := store.NewCollection[models.CartItem](s.kv, store.CartKey(pharmacy.ID))

	// the lines are taken out of the cart in the same step that reads them
	var lines []models.CartItem
	err := cart.Mutate(ctx, func(items []models.CartItem) ([]models.CartItem, error) {
		matched, rest := pricing.SplitByWarehouse(items, warehouseID)
		lines = matched
		if len(matched) == 0 {
			return nil, ErrEmptyOrder
		}
		if rest == nil {
			rest = []models.CartItem{}
		}
		return rest, nil
	})
	if errors.Is(err, ErrEmptyOrder) {
		return nil, ErrEmptyOrder
	}
	if err != nil {
		return nil, err
	}

	order := s.buildOrder(pharmacy, warehouseID, lines)

	err = s.orders.Mutate(ctx, func(orders []models.Order) ([]models.Order, error) {
		return append([]models.Order{order}, orders...), nil
	})
	if err != nil {
		s.restoreLines(ctx, cart, lines)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersSubmittedTotal.Inc()
	util.OrderAmountTotal.Add(order.TotalAmount)
	s.logger.Info("Order submitted",
		zap.String("order_id", order.ID),
		zap.String("pharmacy_id", pharmacy.ID),
		zap.String("warehouse_id", warehouseID),
		zap.Float64("total_amount", order.TotalAmount))

	event := &models.OrderSubmittedEvent{
		BaseEvent:   broker.NewBaseEvent(models.EventTypeOrderSubmitted),
		OrderID:     order.ID,
		PharmacyID:  pharmacy.ID,
		WarehouseID: warehouseID,
		TotalAmount: order.TotalAmount,
	}
	if err := s.eventPublisher.PublishOrderSubmitted(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(event.EventType).Inc()
		s.logger.Error("Failed to publish OrderSubmitted event", zap.Error(err))
	}

	return &order, nil
}

// restoreLines puts lines back at the front of the cart after a failed order write
func (s *OrderService) restoreLines(ctx context.Context, cart *store.Collection[models.CartItem], lines []models.CartItem) {
	err := cart.Mutate(context.WithoutCancel(ctx), func(items []models.CartItem) ([]models.CartItem, error) {
		return append(append([]models.CartItem{}, lines...), items...), nil
	})
	if err != nil {
		s.logger.Error("Failed to restore cart lines",
			zap.String("cart", cart.Key()),
			zap.Int("lines", len(lines)),
			zap.Error(err))
	}
}

func (s *OrderService) buildOrder(pharmacy *models.User, warehouseID string, lines []models.CartItem) models.Order {
	now := s.now()
	order := models.Order{
		ID:           fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.New().String()[:8])),
		PharmacyID:   pharmacy.ID,
		PharmacyName: pharmacy.Name,
		WarehouseID:  warehouseID,
		TotalAmount:  pricing.GroupTotal(lines),
		Status:       models.OrderStatusPending,
		OrderDate:    now.Format("2006-01-02 15:04"),
		Details:      make([]models.OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		order.ItemsCount += line.Quantity
		order.Details = append(order.Details, models.OrderItem{
			Name:  line.TradeName,
			Qty:   line.Quantity,
			Price: line.Price,
		})
	}
	return order
}

// PharmacyOrders returns the pharmacy's orders, optionally filtered by a
// case-insensitive match on id or status
func (s *OrderService) PharmacyOrders(ctx context.Context, pharmacyID, term string) ([]models.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	result := []models.Order{}
	for _, o := range orders {
		if o.PharmacyID != pharmacyID {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(o.ID), term) &&
			!strings.Contains(strings.ToLower(o.Status), term) {
			continue
		}
		result = append(result, o)
	}
	return result, nil
}

// WarehouseOrders returns the orders addressed to a warehouse
func (s *OrderService) WarehouseOrders(ctx context.Context, warehouseID string) ([]models.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}

	result := []models.Order{}
	for _, o := range orders {
		if o.WarehouseID == warehouseID {
			result = append(result, o)
		}
	}
	return result, nil
}

// RequestInvoice flags a completed order of the pharmacy for invoicing
func (s *OrderService) RequestInvoice(ctx context.Context, pharmacyID, orderID string) (*models.Order, error) {
	var updated *models.Order
	alreadyRequested := false
	err := s.orders.Mutate(ctx, func(orders []models.Order) ([]models.Order, error) {
		for i := range orders {
			if orders[i].ID != orderID || orders[i].PharmacyID != pharmacyID {
				continue
			}
			if orders[i].Status != models.OrderStatusCompleted {
				return nil, ErrInvoiceNotAllowed
			}
			alreadyRequested = orders[i].InvoiceRequested
			orders[i].InvoiceRequested = true
			o := orders[i]
			updated = &o
			if alreadyRequested {
				return nil, nil
			}
			return orders, nil
		}
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	if alreadyRequested {
		return updated, nil
	}

	util.InvoicesRequestedTotal.Inc()
	s.logger.Info("Invoice requested", zap.String("order_id", orderID))

	event := &models.InvoiceRequestedEvent{
		BaseEvent:  broker.NewBaseEvent(models.EventTypeInvoiceRequested),
		OrderID:    orderID,
		PharmacyID: pharmacyID,
	}
	if err := s.eventPublisher.PublishInvoiceRequested(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(event.EventType).Inc()
		s.logger.Error("Failed to publish InvoiceRequested event", zap.Error(err))
	}

	return updated, nil
}

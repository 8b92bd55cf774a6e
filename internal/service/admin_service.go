package service

import (
	"context"
	"time"

	"pharma-market/internal/broker"
	"pharma-market/internal/models"
	"pharma-market/internal/store"
	"pharma-market/internal/util"

	"go.uber.org/zap"
)

// AdminService moderates registration requests and user accounts
type AdminService struct {
	users          *store.Collection[models.User]
	requests       *store.Collection[models.RegistrationRequest]
	warehouses     *store.Collection[models.Warehouse]
	eventPublisher *broker.EventPublisher
	now            func() time.Time
	logger         *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(kv store.KV, eventPublisher *broker.EventPublisher) *AdminService {
	return &AdminService{
		users:          store.NewCollection[models.User](kv, store.KeyUsers),
		requests:       store.NewCollection[models.RegistrationRequest](kv, store.KeyRegistrationRequests),
		warehouses:     store.NewCollection[models.Warehouse](kv, store.KeyWarehouses),
		eventPublisher: eventPublisher,
		now:            time.Now,
		logger:         util.GetLogger(),
	}
}

// RequestQueues splits registration requests into the pending queue and the
// decided history
type RequestQueues struct {
	Pending []models.RegistrationRequest `json:"pending"`
	History []models.RegistrationRequest `json:"history"`
}

// Stats is the dashboard summary
type Stats struct {
	TotalUsers      int `json:"totalUsers"`
	PendingRequests int `json:"pendingRequests"`
	Pharmacies      int `json:"pharmacies"`
	Warehouses      int `json:"warehouses"`
}

// Requests returns the pending queue and the history, newest first
func (s *AdminService) Requests(ctx context.Context) (*RequestQueues, error) {
	requests, err := s.requests.List(ctx)
	if err != nil {
		return nil, err
	}

	queues := &RequestQueues{
		Pending: []models.RegistrationRequest{},
		History: []models.RegistrationRequest{},
	}
	for _, r := range requests {
		if r.Status == models.StatusPending {
			queues.Pending = append(queues.Pending, r.Public())
		} else {
			queues.History = append(queues.History, r.Public())
		}
	}
	return queues, nil
}

// ProcessRequest records the decision on a request. Approval creates the user
// (and, for warehouses, the warehouse record) unless one with the request id
// already exists. Unknown ids are a no-op.
func (s *AdminService) ProcessRequest(ctx context.Context, requestID string, decision models.RegistrationStatus) error {
	ctx, span := util.StartSpan(ctx, "AdminService.ProcessRequest", "request_id", requestID)
	defer span.End()

	if decision != models.StatusApproved && decision != models.StatusRejected {
		return ErrInvalidDecision
	}

	var decided *models.RegistrationRequest
	err := s.requests.Mutate(ctx, func(requests []models.RegistrationRequest) ([]models.RegistrationRequest, error) {
		for i := range requests {
			if requests[i].ID == requestID {
				requests[i].Status = decision
				r := requests[i]
				decided = &r
				return requests, nil
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	if decided == nil {
		s.logger.Warn("Decision for unknown request ignored", zap.String("request_id", requestID))
		return nil
	}

	if decision == models.StatusApproved {
		if err := s.activate(ctx, decided); err != nil {
			return err
		}
	}

	util.RegistrationDecisionsTotal.WithLabelValues(string(decision)).Inc()
	s.logger.Info("Registration request decided",
		zap.String("request_id", requestID),
		zap.String("decision", string(decision)))

	event := &models.RegistrationDecidedEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeRegistrationDecided),
		RequestID: requestID,
		Decision:  decision,
	}
	if err := s.eventPublisher.PublishRegistrationDecided(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(event.EventType).Inc()
		s.logger.Error("Failed to publish RegistrationDecided event", zap.Error(err))
	}

	return nil
}

func (s *AdminService) activate(ctx context.Context, r *models.RegistrationRequest) error {
	role := models.RoleWarehouse
	if r.Type == models.RolePharmacy {
		role = models.RolePharmacy
	}

	err := s.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		for _, u := range users {
			if u.ID == r.ID {
				return nil, nil
			}
		}
		return append(users, models.User{
			ID:           r.ID,
			Name:         r.Name,
			Phone:        r.ContactPhone,
			PasswordHash: r.PasswordHash,
			Role:         role,
			Status:       models.StatusApproved,
		}), nil
	})
	if err != nil {
		return err
	}

	if role != models.RoleWarehouse {
		return nil
	}

	return s.warehouses.Mutate(ctx, func(warehouses []models.Warehouse) ([]models.Warehouse, error) {
		for _, w := range warehouses {
			if w.ID == r.ID {
				return nil, nil
			}
		}
		return append(warehouses, models.Warehouse{
			ID:              r.ID,
			Name:            r.Name,
			LastUpdated:     s.now().Format("15:04"),
			IntegrationType: models.IntegrationManual,
		}), nil
	})
}

// Users returns all active accounts
func (s *AdminService) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	return users, nil
}

// DeleteUser removes the account; unknown ids are a no-op
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	removed := false
	err := s.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		removed = false
		kept := make([]models.User, 0, len(users))
		for _, u := range users {
			if u.ID == userID {
				removed = true
				continue
			}
			kept = append(kept, u)
		}
		if !removed {
			return nil, nil
		}
		return kept, nil
	})
	if err != nil || !removed {
		return err
	}

	util.UsersDeletedTotal.Inc()
	s.logger.Info("User deleted", zap.String("user_id", userID))

	event := &models.UserDeletedEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeUserDeleted),
		UserID:    userID,
	}
	if err := s.eventPublisher.PublishUserDeleted(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(event.EventType).Inc()
		s.logger.Error("Failed to publish UserDeleted event", zap.Error(err))
	}
	return nil
}

// Stats summarizes users and pending requests
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalUsers: len(users)}
	for _, u := range users {
		switch u.Role {
		case models.RolePharmacy:
			stats.Pharmacies++
		case models.RoleWarehouse:
			stats.Warehouses++
		}
	}
	for _, r := range requests {
		if r.Status == models.StatusPending {
			stats.PendingRequests++
		}
	}
	return stats, nil
}

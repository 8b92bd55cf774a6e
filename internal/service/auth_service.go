package service

import (
	"context"
	"fmt"
	"time"

	"pharma-market/internal/broker"
	"pharma-market/internal/models"
	"pharma-market/internal/store"
	"pharma-market/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService validates credentials and records registration requests
type AuthService struct {
	users          *store.Collection[models.User]
	requests       *store.Collection[models.RegistrationRequest]
	eventPublisher *broker.EventPublisher
	hashCost       int
	now            func() time.Time
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(kv store.KV, eventPublisher *broker.EventPublisher, hashCost int) *AuthService {
	return &AuthService{
		users:          store.NewCollection[models.User](kv, store.KeyUsers),
		requests:       store.NewCollection[models.RegistrationRequest](kv, store.KeyRegistrationRequests),
		eventPublisher: eventPublisher,
		hashCost:       hashCost,
		now:            time.Now,
		logger:         util.GetLogger(),
	}
}

// RegisterInput is the self-service registration form
type RegisterInput struct {
	Name          string          `json:"name" binding:"required"`
	Type          models.UserRole `json:"type" binding:"required,oneof=PHARMACY WAREHOUSE"`
	LicenseNumber string          `json:"licenseNumber" binding:"required"`
	Location      string          `json:"location" binding:"required"`
	ContactPhone  string          `json:"contactPhone" binding:"required"`
	Password      string          `json:"password" binding:"required,min=6"`
}

// Login matches active users first, then registration requests, so applicants
// learn the state of their request
func (s *AuthService) Login(ctx context.Context, phone, password string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if u.Phone != phone || !passwordMatches(u.PasswordHash, password) {
			continue
		}
		if u.Status != models.StatusApproved {
			util.LoginAttemptsTotal.WithLabelValues("not_approved").Inc()
			return nil, ErrAccountNotApproved
		}
		util.LoginAttemptsTotal.WithLabelValues("success").Inc()
		s.logger.Info("User logged in", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
		public := u.Public()
		return &public, nil
	}

	requests, err := s.requests.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, r := range requests {
		if r.ContactPhone != phone || !passwordMatches(r.PasswordHash, password) {
			continue
		}
		switch r.Status {
		case models.StatusPending:
			util.LoginAttemptsTotal.WithLabelValues("request_pending").Inc()
			return nil, ErrRequestPending
		case models.StatusRejected:
			util.LoginAttemptsTotal.WithLabelValues("request_rejected").Inc()
			return nil, ErrRequestRejected
		}
		break
	}

	util.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
	return nil, ErrInvalidCredentials
}

// Register records a PENDING request at the front of the queue. No account is
// created until an admin approves it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.RegistrationRequest, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Register")
	defer span.End()

	// Accounts are only created from approved requests, which keep their phone
	// in the request list, so the check inside the requests mutation below is
	// the one that holds under concurrency. This pass covers seeded accounts.
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Phone == in.ContactPhone {
			return nil, ErrDuplicatePhone
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	request := models.RegistrationRequest{
		ID:            uuid.New().String(),
		Name:          in.Name,
		Type:          in.Type,
		LicenseNumber: in.LicenseNumber,
		Location:      in.Location,
		RequestDate:   s.now().Format("2006-01-02"),
		Status:        models.StatusPending,
		ContactPhone:  in.ContactPhone,
		PasswordHash:  string(hash),
	}

	err = s.requests.Mutate(ctx, func(requests []models.RegistrationRequest) ([]models.RegistrationRequest, error) {
		for _, r := range requests {
			if r.ContactPhone == in.ContactPhone {
				return nil, ErrDuplicatePhone
			}
		}
		return append([]models.RegistrationRequest{request}, requests...), nil
	})
	if err != nil {
		return nil, err
	}

	util.RegistrationRequestsTotal.WithLabelValues(string(in.Type)).Inc()
	s.logger.Info("Registration request created",
		zap.String("request_id", request.ID),
		zap.String("type", string(request.Type)))

	event := &models.RegistrationSubmittedEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeRegistrationSubmitted),
		RequestID: request.ID,
		Type:      request.Type,
	}
	if err := s.eventPublisher.PublishRegistrationSubmitted(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(event.EventType).Inc()
		s.logger.Error("Failed to publish RegistrationSubmitted event", zap.Error(err))
	}

	public := request.Public()
	return &public, nil
}

func passwordMatches(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

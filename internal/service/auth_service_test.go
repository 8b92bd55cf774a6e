package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pharma-market/internal/models"
	"pharma-market/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(env *testEnv) *AuthService {
	return NewAuthService(env.kv, env.publisher, bcrypt.MinCost)
}

func TestLoginSeededAccounts(t *testing.T) {
	env := newTestEnv(t)
	s := newAuthService(env)
	ctx := context.Background()

	tests := []struct {
		phone, password string
		wantID          string
		wantRole        models.UserRole
	}{
		{"01000000000", "admin123", "admin_1", models.RoleAdmin},
		{"01234567890", "123456", "user_pharma_1", models.RolePharmacy},
		{"01111111111", "123456", "w1", models.RoleWarehouse},
	}

	for _, tt := range tests {
		t.Run(tt.wantID, func(t *testing.T) {
			u, err := s.Login(ctx, tt.phone, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, u.ID)
			assert.Equal(t, tt.wantRole, u.Role)
			assert.Empty(t, u.PasswordHash)
		})
	}
}

func TestLoginRequestStates(t *testing.T) {
	env := newTestEnv(t)
	s := newAuthService(env)
	ctx := context.Background()

	_, err := s.Login(ctx, "01010101010", "password123")
	assert.ErrorIs(t, err, ErrRequestPending)

	_, err = s.Login(ctx, "01555555555", "password123")
	assert.ErrorIs(t, err, ErrRequestRejected)

	// approved request whose user does not exist
	_, err = s.Login(ctx, "01222222222", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, "01234567890", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, "09999999999", "123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnapprovedUser(t *testing.T) {
	env := newTestEnv(t)
	s := newAuthService(env)
	ctx := context.Background()

	users := store.NewCollection[models.User](env.kv, store.KeyUsers)
	require.NoError(t, users.Mutate(ctx, func(items []models.User) ([]models.User, error) {
		for i := range items {
			if items[i].ID == "user_pharma_1" {
				items[i].Status = models.StatusPending
			}
		}
		return items, nil
	}))

	_, err := s.Login(ctx, "01234567890", "123456")
	assert.ErrorIs(t, err, ErrAccountNotApproved)
}

func TestRegisterCreatesPendingRequestOnly(t *testing.T) {
	env := newTestEnv(t)
	s := newAuthService(env)
	s.now = func() time.Time { return time.Date(2024, 10, 11, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	before, err := store.NewCollection[models.User](env.kv, store.KeyUsers).List(ctx)
	require.NoError(t, err)

	req, err := s.Register(ctx, RegisterInput{
		Name:          "Al Salam Pharmacy",
		Type:          models.RolePharmacy,
		LicenseNumber: "LIC-1",
		Location:      "Tanta",
		ContactPhone:  "01099999999",
		Password:      "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, "2024-10-11", req.RequestDate)
	assert.Empty(t, req.PasswordHash)
	assert.NotEmpty(t, req.ID)

	requests, err := store.NewCollection[models.RegistrationRequest](env.kv, store.KeyRegistrationRequests).List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, requests)
	assert.Equal(t, req.ID, requests[0].ID)
	assert.NotEmpty(t, requests[0].PasswordHash)
	assert.NotEqual(t, "secret1", requests[0].PasswordHash)

	after, err := store.NewCollection[models.User](env.kv, store.KeyUsers).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = s.Login(ctx, "01099999999", "secret1")
	assert.ErrorIs(t, err, ErrRequestPending)

	assert.Equal(t, 1, env.writer.count())
}

func TestRegisterRejectsDuplicatePhone(t *testing.T) {
	env := newTestEnv(t)
	s := newAuthService(env)
	ctx := context.Background()

	in := RegisterInput{Name: "X", Type: models.RoleWarehouse, LicenseNumber: "L", Location: "Cairo", Password: "secret1"}

	in.ContactPhone = "01234567890"
	_, err := s.Register(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicatePhone)

	in.ContactPhone = "01010101010"
	_, err = s.Register(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicatePhone)

	assert.Zero(t, env.writer.count())
}

func TestRegisterConcurrentSamePhone(t *testing.T) {
	env := newTestEnv(t)
	kv := &slowKV{KV: env.kv, prefix: store.KeyRegistrationRequests, delay: 10 * time.Millisecond}
	s := NewAuthService(kv, env.publisher, bcrypt.MinCost)
	ctx := context.Background()

	in := RegisterInput{Name: "X", Type: models.RolePharmacy, LicenseNumber: "L", Location: "Giza", ContactPhone: "01155555555", Password: "secret1"}

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Register(ctx, in)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicatePhone)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, env.writer.count())
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	sessions := NewSessionManager(env.kv, time.Hour)
	ctx := context.Background()

	token, err := sessions.Create(ctx, "user_pharma_1")
	require.NoError(t, err)

	u, err := sessions.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user_pharma_1", u.ID)
	assert.Empty(t, u.PasswordHash)

	require.NoError(t, sessions.Revoke(ctx, token))
	_, err = sessions.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = sessions.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSessionExpiresAndFollowsUser(t *testing.T) {
	env := newTestEnv(t)
	sessions := NewSessionManager(env.kv, time.Hour)
	now := time.Date(2024, 10, 11, 9, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }
	ctx := context.Background()

	token, err := sessions.Create(ctx, "w1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = sessions.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	now = now.Add(-2 * time.Hour)
	token, err = sessions.Create(ctx, "w1")
	require.NoError(t, err)
	require.NoError(t, NewAdminService(env.kv, env.publisher).DeleteUser(ctx, "w1"))

	_, err = sessions.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

type expiringKV struct {
	store.KV
	ttls map[string]time.Duration
}

func (e *expiringKV) Expire(ctx context.Context, key string, ttl time.Duration) error {
	e.ttls[key] = ttl
	return nil
}

func TestSessionKeyExpiresInBackend(t *testing.T) {
	env := newTestEnv(t)
	kv := &expiringKV{KV: env.kv, ttls: map[string]time.Duration{}}
	sessions := NewSessionManager(kv, 12*time.Hour)

	token, err := sessions.Create(context.Background(), "user_pharma_1")
	require.NoError(t, err)
	assert.Equal(t, map[string]time.Duration{store.SessionKey(token): 12 * time.Hour}, kv.ttls)
}

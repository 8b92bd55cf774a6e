package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"pharma-market/internal/broker"
	"pharma-market/internal/models"
	"pharma-market/internal/store"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingWriter struct {
	mu     sync.Mutex
	keys   []string
	events []interface{}
}

func (w *recordingWriter) PublishEvent(ctx context.Context, key string, event interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.keys = append(w.keys, key)
	w.events = append(w.events, event)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.events)
}

type fakeExtractor struct {
	records     []models.OfferRecord
	err         error
	suggestions []string
	// block, when set, makes ParseText/ParseDocument wait until released or
	// cancelled
	block    chan struct{}
	started  chan struct{}
	lastMime string
}

func (f *fakeExtractor) wait(ctx context.Context) error {
	if f.block == nil {
		return nil
	}
	if f.started != nil {
		f.started <- struct{}{}
	}
	select {
	case <-f.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeExtractor) ParseText(ctx context.Context, rawText string) ([]models.OfferRecord, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.records, f.err
}

func (f *fakeExtractor) ParseDocument(ctx context.Context, data []byte, mimeType string) ([]models.OfferRecord, error) {
	f.lastMime = mimeType
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.records, f.err
}

func (f *fakeExtractor) SuggestCorrections(ctx context.Context, query string) []string {
	return f.suggestions
}

// slowKV stretches reads and updates of keys under prefix so that concurrent
// callers overlap
type slowKV struct {
	store.KV
	prefix string
	delay  time.Duration
}

func (s *slowKV) Get(ctx context.Context, key string) ([]byte, error) {
	if strings.HasPrefix(key, s.prefix) {
		time.Sleep(s.delay)
	}
	return s.KV.Get(ctx, key)
}

func (s *slowKV) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	if !strings.HasPrefix(key, s.prefix) {
		return s.KV.Update(ctx, key, fn)
	}
	return s.KV.Update(ctx, key, func(current []byte) ([]byte, error) {
		time.Sleep(s.delay)
		return fn(current)
	})
}

var errWriteFailed = errors.New("write failed")

// failingKV rejects every update of one key
type failingKV struct {
	store.KV
	key string
}

func (f *failingKV) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	if key == f.key {
		return errWriteFailed
	}
	return f.KV.Update(ctx, key, fn)
}

type testEnv struct {
	kv        *store.MemoryStore
	writer    *recordingWriter
	publisher *broker.EventPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	kv := store.NewMemoryStore()
	require.NoError(t, store.Seed(context.Background(), kv, bcrypt.MinCost))
	w := &recordingWriter{}
	return &testEnv{kv: kv, writer: w, publisher: broker.NewEventPublisher(w)}
}

func ptr[T any](v T) *T { return &v }

package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pharma-market/internal/broker"
	"pharma-market/internal/models"
	"pharma-market/internal/store"
	"pharma-market/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Extractor turns raw price lists into offer records
type Extractor interface {
	ParseText(ctx context.Context, rawText string) ([]models.OfferRecord, error)
	ParseDocument(ctx context.Context, data []byte, mimeType string) ([]models.OfferRecord, error)
	SuggestCorrections(ctx context.Context, query string) []string
}

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".csv":  "text/csv",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
}

// InferMimeType keeps an explicit mime type, otherwise derives one from the
// file extension, falling back to image/jpeg
func InferMimeType(fileName, mimeType string) string {
	if mimeType != "" && mimeType != "application/octet-stream" {
		return mimeType
	}
	if m, ok := mimeTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return m
	}
	return "image/jpeg"
}

type inflight struct {
	seq    uint64
	cancel context.CancelFunc
}

// IngestionService parses warehouse price lists and tracks upload compliance
type IngestionService struct {
	kv             store.KV
	extractor      Extractor
	eventPublisher *broker.EventPublisher
	cutoffHour     int
	now            func() time.Time
	logger         *zap.Logger

	mu      sync.Mutex
	seq     uint64
	running map[string]inflight
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(kv store.KV, extractor Extractor, eventPublisher *broker.EventPublisher, cutoffHour int) *IngestionService {
	return &IngestionService{
		kv:             kv,
		extractor:      extractor,
		eventPublisher: eventPublisher,
		cutoffHour:     cutoffHour,
		now:            time.Now,
		logger:         util.GetLogger(),
		running:        make(map[string]inflight),
	}
}

// begin cancels any ingestion still running for the warehouse and registers a
// new one
func (s *IngestionService) begin(ctx context.Context, warehouseID string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if prev, ok := s.running[warehouseID]; ok {
		prev.cancel()
		s.logger.Info("Superseded in-flight ingestion", zap.String("warehouse_id", warehouseID))
	}
	s.seq++
	seq := s.seq
	s.running[warehouseID] = inflight{seq: seq, cancel: cancel}
	s.mu.Unlock()

	return ctx, func() {
		s.mu.Lock()
		if cur, ok := s.running[warehouseID]; ok && cur.seq == seq {
			delete(s.running, warehouseID)
		}
		s.mu.Unlock()
		cancel()
	}
}

// IngestText extracts offer records from pasted text. Records are returned
// for review and not applied to the catalog.
func (s *IngestionService) IngestText(ctx context.Context, warehouseID, rawText string) ([]models.OfferRecord, error) {
	ctx, span := util.StartSpan(ctx, "IngestionService.IngestText", "warehouse_id", warehouseID)
	defer span.End()

	ctx, done := s.begin(ctx, warehouseID)
	defer done()

	records, err := s.extractor.ParseText(ctx, rawText)
	if err != nil {
		return nil, asExtractionError(err)
	}

	util.PriceListsIngestedTotal.WithLabelValues("text").Inc()
	util.OfferRecordsExtractedTotal.Add(float64(len(records)))
	s.logger.Info("Price list text parsed",
		zap.String("warehouse_id", warehouseID),
		zap.Int("records", len(records)))
	return records, nil
}

// IngestDocument extracts offer records from an uploaded file. On success the
// upload is recorded in the warehouse's history and its daily compliance flag
// is set.
func (s *IngestionService) IngestDocument(ctx context.Context, warehouseID, fileName string, data []byte, mimeType string) ([]models.OfferRecord, error) {
	ctx, span := util.StartSpan(ctx, "IngestionService.IngestDocument",
		"warehouse_id", warehouseID, "file_name", fileName)
	defer span.End()

	mimeType = InferMimeType(fileName, mimeType)

	ctx, done := s.begin(ctx, warehouseID)
	defer done()

	records, err := s.extractor.ParseDocument(ctx, data, mimeType)
	if err != nil {
		return nil, asExtractionError(err)
	}

	now := s.now()
	entry := models.UploadHistory{
		ID:         uuid.New().String(),
		FileName:   fileName,
		UploadTime: now.Format("15:04:05"),
		Status:     models.UploadProcessed,
		ItemsCount: len(records),
	}
	history := store.NewCollection[models.UploadHistory](s.kv, store.UploadHistoryKey(warehouseID))
	err = history.Mutate(ctx, func(items []models.UploadHistory) ([]models.UploadHistory, error) {
		return append([]models.UploadHistory{entry}, items...), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	status := store.NewDocument[models.DailyStatus](s.kv, store.DailyStatusKey(warehouseID))
	err = status.Mutate(ctx, func(current models.DailyStatus) (models.DailyStatus, error) {
		if now.Hour() < s.cutoffHour {
			current.Morning = true
		} else {
			current.Evening = true
		}
		current.LastSync = now.Format(time.RFC3339)
		return current, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update daily status: %w", err)
	}

	util.PriceListsIngestedTotal.WithLabelValues("document").Inc()
	util.OfferRecordsExtractedTotal.Add(float64(len(records)))
	s.logger.Info("Price list document parsed",
		zap.String("warehouse_id", warehouseID),
		zap.String("file_name", fileName),
		zap.String("mime_type", mimeType),
		zap.Int("records", len(records)))

	event := &models.PriceListIngestedEvent{
		BaseEvent:   broker.NewBaseEvent(models.EventTypePriceListIngested),
		WarehouseID: warehouseID,
		FileName:    fileName,
		ItemsCount:  len(records),
	}
	if err := s.eventPublisher.PublishPriceListIngested(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(event.EventType).Inc()
		s.logger.Error("Failed to publish PriceListIngested event", zap.Error(err))
	}

	return records, nil
}

// PublishPriceList hands reviewed records to the catalog through the event
// stream
func (s *IngestionService) PublishPriceList(ctx context.Context, warehouseID string, records []models.OfferRecord) error {
	event := &models.PriceListPublishedEvent{
		BaseEvent:   broker.NewBaseEvent(models.EventTypePriceListPublished),
		WarehouseID: warehouseID,
		Records:     records,
	}
	if err := s.eventPublisher.PublishPriceListPublished(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(event.EventType).Inc()
		return fmt.Errorf("failed to publish price list: %w", err)
	}

	util.PriceListsPublishedTotal.Inc()
	s.logger.Info("Price list published",
		zap.String("warehouse_id", warehouseID),
		zap.Int("records", len(records)))
	return nil
}

// UploadHistory returns the warehouse's uploads, newest first
func (s *IngestionService) UploadHistory(ctx context.Context, warehouseID string) ([]models.UploadHistory, error) {
	return store.NewCollection[models.UploadHistory](s.kv, store.UploadHistoryKey(warehouseID)).List(ctx)
}

// DailyStatus returns the warehouse's compliance flags
func (s *IngestionService) DailyStatus(ctx context.Context, warehouseID string) (models.DailyStatus, error) {
	status, _, err := store.NewDocument[models.DailyStatus](s.kv, store.DailyStatusKey(warehouseID)).Get(ctx)
	return status, err
}

// ResetDailyStatus clears both compliance flags
func (s *IngestionService) ResetDailyStatus(ctx context.Context, warehouseID string) error {
	return store.NewDocument[models.DailyStatus](s.kv, store.DailyStatusKey(warehouseID)).Delete(ctx)
}

// SuggestCorrections proposes up to three spellings for a query
func (s *IngestionService) SuggestCorrections(ctx context.Context, query string) []string {
	if strings.TrimSpace(query) == "" {
		return []string{}
	}
	suggestions := s.extractor.SuggestCorrections(ctx, query)
	if suggestions == nil {
		return []string{}
	}
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

func asExtractionError(err error) error {
	if errors.Is(err, ErrExtraction) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrExtraction, err)
}

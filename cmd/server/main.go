package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharma-market/config"
	"pharma-market/internal/api"
	"pharma-market/internal/broker"
	"pharma-market/internal/extraction"
	"pharma-market/internal/redisclient"
	"pharma-market/internal/service"
	"pharma-market/internal/store"
	"pharma-market/internal/util"
	"pharma-market/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting pharma market")

	shutdownTracer, err := util.InitTracer(cfg.Observ.TracingEnabled, cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	ctx := context.Background()

	kv, ready, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	if err := store.Seed(ctx, kv, bcrypt.DefaultCost); err != nil {
		log.Fatalf("Failed to seed store: %v", err)
	}

	var generator extraction.Generator = extraction.DisabledGenerator{}
	if cfg.Extraction.APIKey != "" {
		gemini, err := extraction.NewGeminiGenerator(ctx, cfg.Extraction.APIKey, cfg.Extraction.Model)
		if err != nil {
			log.Fatalf("Failed to initialize extraction client: %v", err)
		}
		generator = gemini
		logger.Info("Extraction enabled", zap.String("model", cfg.Extraction.Model))
	} else {
		logger.Warn("GEMINI_API_KEY not set, price list extraction disabled")
	}
	extractor := extraction.NewAdapter(generator, time.Duration(cfg.Extraction.TimeoutSeconds)*time.Second)

	catalogService := service.NewCatalogService(kv)
	projector := service.NewPriceListProjector(kv, catalogService)

	var writer broker.EventWriter
	if cfg.Kafka.Enabled {
		writer = broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		log.Println("Kafka producer initialized")
	} else {
		writer = broker.NewLocalWriter(worker.NewEventHandler(projector).HandleMessage)
		log.Println("Kafka disabled, dispatching events in-process")
	}
	defer writer.Close()

	eventPublisher := broker.NewEventPublisher(writer)

	services := api.Services{
		Auth:      service.NewAuthService(kv, eventPublisher, bcrypt.DefaultCost),
		Sessions:  service.NewSessionManager(kv, time.Duration(cfg.Business.SessionTTLHours)*time.Hour),
		Admin:     service.NewAdminService(kv, eventPublisher),
		Catalog:   catalogService,
		Ingestion: service.NewIngestionService(kv, extractor, eventPublisher, cfg.Business.ComplianceCutoffHour),
		Cart:      service.NewCartService(kv, catalogService),
		Orders:    service.NewOrderService(kv, eventPublisher),
		Market:    service.NewMarketService(kv),
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var priceListWorker *worker.PriceListWorker
	if cfg.Kafka.Enabled {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
		priceListWorker = worker.NewPriceListWorker(consumer, projector)
		go func() {
			if err := priceListWorker.Start(workerCtx); err != nil && err != context.Canceled {
				log.Printf("Price list worker error: %v", err)
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(services, time.Duration(cfg.Business.SearchDebounceMs)*time.Millisecond, ready)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	if priceListWorker != nil {
		priceListWorker.Stop()
	}

	log.Println("Server exited")
}

// openStore connects the configured backend and returns it with a readiness
// probe and a close function
func openStore(ctx context.Context, cfg *config.Config) (store.KV, api.ReadinessCheck, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := store.NewStore(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		log.Println("Database connected")
		ready := func(ctx context.Context) error { return db.GetDB().PingContext(ctx) }
		return db, ready, func() { db.Close() }, nil

	case "redis":
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Println("Redis connected")
		ready := func(ctx context.Context) error { return redisClient.GetClient().Ping(ctx).Err() }
		return redisClient, ready, func() { redisClient.Close() }, nil

	case "memory", "":
		log.Println("Using in-memory store")
		return store.NewMemoryStore(), nil, func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

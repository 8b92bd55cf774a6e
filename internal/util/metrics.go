package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	RegistrationRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registration_requests_total",
		Help: "Total number of registration requests by type",
	}, []string{"type"})

	RegistrationDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registration_decisions_total",
		Help: "Total number of admin decisions on registration requests",
	}, []string{"decision"})

	UsersDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "users_deleted_total",
		Help: "Total number of accounts deleted by the admin",
	})

	DrugSearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drug_searches_total",
		Help: "Total number of catalog searches by channel",
	}, []string{"channel"})

	PriceListsIngestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "price_lists_ingested_total",
		Help: "Total number of price lists parsed by source",
	}, []string{"source"})

	OfferRecordsExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "offer_records_extracted_total",
		Help: "Total number of offer records extracted from price lists",
	})

	PriceListsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "price_lists_published_total",
		Help: "Total number of price lists applied to the catalog",
	})

	ExtractionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "extraction_latency_seconds",
		Help:    "Latency of extraction service calls",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
	}, []string{"source"})

	ExtractionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "extraction_failures_total",
		Help: "Total number of failed extraction calls",
	}, []string{"source"})

	CartItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_added_total",
		Help: "Total number of add-to-cart operations",
	})

	OrdersSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Total number of orders submitted to warehouses",
	})

	OrderAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_amount_total",
		Help: "Sum of submitted order totals",
	})

	InvoicesRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoices_requested_total",
		Help: "Total number of invoice requests",
	})

	EventsPublishFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_publish_failed_total",
		Help: "Total number of domain events that could not be published",
	}, []string{"event_type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

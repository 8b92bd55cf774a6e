package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"pharma-market/internal/models"
	"pharma-market/internal/service"
	"pharma-market/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles the business services exposed over HTTP
type Services struct {
	Auth      *service.AuthService
	Sessions  *service.SessionManager
	Admin     *service.AdminService
	Catalog   *service.CatalogService
	Ingestion *service.IngestionService
	Cart      *service.CartService
	Orders    *service.OrderService
	Market    *service.MarketService
}

// ReadinessCheck reports whether backing stores are reachable
type ReadinessCheck func(ctx context.Context) error

// Handler contains HTTP handlers
type Handler struct {
	svc            Services
	searchDebounce time.Duration
	ready          ReadinessCheck
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, searchDebounce time.Duration, ready ReadinessCheck) *Handler {
	return &Handler{
		svc:            svc,
		searchDebounce: searchDebounce,
		ready:          ready,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", h.login)
		v1.POST("/auth/register", h.register)
		v1.POST("/auth/logout", h.logout)
	}

	anyUser := v1.Group("", h.authRequired(models.RolePharmacy, models.RoleWarehouse))
	{
		anyUser.GET("/drugs/search", h.searchDrugs)
		anyUser.GET("/drugs/search/live", h.liveSearch)
		anyUser.POST("/drugs/suggestions", h.suggestCorrections)
		anyUser.GET("/warehouses", h.listWarehouses)
		anyUser.GET("/market", h.listMarket)
	}

	pharmacy := v1.Group("", h.authRequired(models.RolePharmacy))
	{
		pharmacy.GET("/cart", h.getCart)
		pharmacy.POST("/cart/items", h.addToCart)
		pharmacy.DELETE("/cart/items/:id", h.removeFromCart)
		pharmacy.POST("/cart/warehouses/:warehouseId/submit", h.submitOrder)
		pharmacy.GET("/orders", h.listOrders)
		pharmacy.POST("/orders/:id/invoice", h.requestInvoice)
	}

	warehouse := v1.Group("", h.authRequired(models.RoleWarehouse))
	{
		warehouse.POST("/price-lists/text", h.ingestText)
		warehouse.POST("/price-lists/document", h.ingestDocument)
		warehouse.POST("/price-lists/publish", h.publishPriceList)
		warehouse.GET("/uploads", h.uploadHistory)
		warehouse.GET("/compliance", h.dailyStatus)
		warehouse.DELETE("/compliance", h.resetDailyStatus)
		warehouse.GET("/incoming-orders", h.incomingOrders)
	}

	admin := v1.Group("/admin", h.authRequired(models.RoleAdmin))
	{
		admin.GET("/requests", h.listRequests)
		admin.POST("/requests/:id/decision", h.processRequest)
		admin.GET("/users", h.listUsers)
		admin.DELETE("/users/:id", h.deleteUser)
		admin.GET("/stats", h.stats)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not ready",
				"details": err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/agentic-commerce/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		securityHeaders(),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/health", handler.Health)

	api := router.Group("/api/v1")
	{
		api.GET("/health", handler.Health)
		api.POST("/intent", handler.ParseIntent)
		api.POST("/discover", handler.Discover)
		api.POST("/rank", handler.Rank)
		api.POST("/cart/build", handler.BuildCart)
		api.POST("/cart/add-item", handler.AddItem)
		api.POST("/cart/swap", handler.SwapItem)
		api.POST("/optimize/budget", handler.OptimizeBudget)
		api.POST("/optimize/delivery", handler.OptimizeDelivery)
		api.POST("/explain", handler.Explain)
		api.POST("/checkout/plan", handler.PlanCheckout)
		api.POST("/checkout/execute", handler.ExecuteCheckout)
		api.POST("/product-details", handler.ProductDetails)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}

package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	e.HTTPErrorHandler = NotFoundJSON()

	e.Use(SetJSONContentType)
	e.Use(SetNoCacheHeaders)

	// Optional API key authentication
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}

	// Swap pipeline endpoints. Rate limited because each swap request ties up
	// an upstream quote and an RPC confirmation loop.
	swapGroup := e.Group("/swap")
	swapGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(2), // 2 requests per second per client
		Burst:     5,
		ExpiresIn: 2 * time.Minute,
	})))
	swapGroup.POST("/quote", h.Quote)
	swapGroup.POST("/swap", h.Swap)
	swapGroup.POST("/create-token-accounts", h.CreateTokenAccounts)

	// API v1 supporting routes
	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)
	v1.GET("/swaps/recent", h.RecentSwaps)

	// Operational toggles CRUD endpoints
	toggleGroup := v1.Group("/toggles")
	toggleGroup.GET("", h.TogglesList)
	toggleGroup.POST("", h.TogglesUpsert)
	toggleGroup.GET("/:key", h.TogglesGet)
	toggleGroup.PUT("/:key", h.TogglesUpdate)
	toggleGroup.DELETE("/:key", h.TogglesDelete)

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}

package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/solflow/swap-gateway/internal/jupiter"
	"github.com/solflow/swap-gateway/internal/storage"
	"github.com/solflow/swap-gateway/internal/swap"
	"github.com/solflow/swap-gateway/internal/toggles"
)

// QuoteService is the aggregator quote surface. *jupiter.Client implements it.
type QuoteService interface {
	Quote(ctx context.Context, req jupiter.QuoteRequest) (*jupiter.QuoteResponse, error)
}

// SwapService is the execution surface. *swap.Engine implements it.
type SwapService interface {
	Swap(ctx context.Context, quote *jupiter.QuoteResponse, secretKey string) (*swap.Outcome, error)
	SubmitPrerequisite(ctx context.Context, signedTx string) (string, error)
}

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Quoter  QuoteService      // Aggregator quote client
	Swapper SwapService       // Swap execution engine
	Cache   storage.SwapCache // Redis-backed swap data cache (optional)
	Toggles *toggles.Store    // Redis-backed operational toggles (optional)
	DevMode bool              // Enable detailed error responses in development
	Logger  *logrus.Logger    // Structured logger
}

// err returns a standardized JSON error response.
// In dev mode, includes additional error details for debugging.
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// RecentSwaps returns the most recent confirmed swaps with optional limit
// parameter (default: 100, range: 1-100).
func (h *Handlers) RecentSwaps(c echo.Context) error {
	if h.Cache == nil {
		return h.err(c, http.StatusServiceUnavailable, "swap cache is not configured", nil)
	}

	limitStr := c.QueryParam("limit")
	limit := 100
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 100 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 100"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentSwaps(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get swaps", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// TogglesUpsert creates or updates an operational toggle.
func (h *Handlers) TogglesUpsert(c echo.Context) error {
	if h.Toggles == nil {
		return h.err(c, http.StatusServiceUnavailable, "toggles are not configured", nil)
	}

	var req ToggleUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := toggles.ValidateKey(req.Key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Toggles.Upsert(ctx, req.Key, req.Enabled)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert toggle", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// TogglesUpdate updates an existing operational toggle by key.
func (h *Handlers) TogglesUpdate(c echo.Context) error {
	if h.Toggles == nil {
		return h.err(c, http.StatusServiceUnavailable, "toggles are not configured", nil)
	}

	key := c.Param("key")
	if err := toggles.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}
	var req ToggleUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Toggles.Upsert(ctx, key, req.Enabled)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update toggle", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// TogglesGet retrieves an operational toggle by key. 404 when unset.
func (h *Handlers) TogglesGet(c echo.Context) error {
	if h.Toggles == nil {
		return h.err(c, http.StatusServiceUnavailable, "toggles are not configured", nil)
	}

	key := c.Param("key")
	if err := toggles.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Toggles.Get(ctx, key)
	if err != nil {
		if errors.Is(err, toggles.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "toggle not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get toggle", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// TogglesList returns all operational toggles.
func (h *Handlers) TogglesList(c echo.Context) error {
	if h.Toggles == nil {
		return h.err(c, http.StatusServiceUnavailable, "toggles are not configured", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Toggles.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list toggles", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// TogglesDelete removes an operational toggle by key.
// Returns 204 No Content on successful deletion.
func (h *Handlers) TogglesDelete(c echo.Context) error {
	if h.Toggles == nil {
		return h.err(c, http.StatusServiceUnavailable, "toggles are not configured", nil)
	}

	key := c.Param("key")
	if err := toggles.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Toggles.Delete(ctx, key); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete toggle", nil)
	}
	return c.NoContent(http.StatusNoContent)
}
